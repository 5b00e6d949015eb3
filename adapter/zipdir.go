package adapter

import (
	"archive/zip"
	"io"
	"sort"
	"strings"
)

// ZipDir is the StorageAdapter backed by an open zip archive. Grounded on
// the teacher's fulpack.scanZip, which walks zr.File the same way; here the
// member set is also indexed for the is_file/is_dir membership tests the
// spec requires rather than returned as a flat scan result.
type ZipDir struct {
	reader *zip.ReadCloser
	names  map[string]bool // exact member names, trailing "/" preserved for directories
	byName map[string]*zip.File
	paths  []string
}

// NewZipDir opens archivePath as a zip archive. The root ("") is always
// present even though it has no literal zip member.
func NewZipDir(archivePath string) (*ZipDir, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}

	z := &ZipDir{
		reader: zr,
		names:  make(map[string]bool),
		byName: make(map[string]*zip.File),
	}
	z.names["/"] = true
	z.paths = append(z.paths, "")

	for _, f := range zr.File {
		z.names[f.Name] = true
		z.byName[f.Name] = f
		trimmed := strings.TrimSuffix(f.Name, "/")
		z.paths = append(z.paths, trimmed)
	}

	sort.Strings(z.paths)
	return z, nil
}

func (z *ZipDir) GetPaths() ([]string, error) {
	return sortedCopy(z.paths), nil
}

func (z *ZipDir) IsDir(path string) bool {
	p := normalize(path)
	if p == "" {
		return true
	}
	return z.names[p+"/"]
}

func (z *ZipDir) IsFile(path string) bool {
	p := normalize(path)
	if p == "" {
		return false
	}
	return z.names[p] && !z.names[p+"/"]
}

func (z *ZipDir) OpenFile(path string) ([]byte, bool) {
	p := normalize(path)
	f, ok := z.byName[p]
	if !ok || f.FileInfo().IsDir() {
		return nil, false
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (z *ZipDir) DecodeJSON(data []byte, path string) (any, bool) {
	return DefaultDecodeJSON(data, path)
}

func (z *ZipDir) LoadMeta(path string) (any, bool) {
	data, ok := z.OpenFile(path)
	if !ok {
		return nil, false
	}
	return z.DecodeJSON(data, path)
}

func (z *ZipDir) Close() error { return z.reader.Close() }
