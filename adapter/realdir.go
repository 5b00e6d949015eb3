package adapter

import (
	"os"
	"path/filepath"
	"sort"
)

// RealDir is the StorageAdapter backed by a real filesystem directory.
// Grounded on the teacher's pathfinder.Finder directory walk and
// IgnoreMatcher, generalized from one-shot discovery to the uniform
// get_paths/is_file/is_dir/open_file capability set DirSchema needs.
type RealDir struct {
	base   string
	ignore *ignoreMatcher
	paths  []string
	files  map[string]bool
	dirs   map[string]bool
}

// NewRealDir walks base once, recording every path (relative to base, using
// "/" separators) except symlinks and anything matched by a
// .dirschemaignore file at base's root.
func NewRealDir(base string) (*RealDir, error) {
	ignore, err := loadIgnoreMatcher(base)
	if err != nil {
		return nil, err
	}

	r := &RealDir{
		base:   base,
		ignore: ignore,
		files:  make(map[string]bool),
		dirs:   make(map[string]bool),
	}
	r.dirs[""] = true
	r.paths = append(r.paths, "")

	walkErr := filepath.WalkDir(base, func(fullPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if fullPath == base {
			return nil
		}
		rel, err := filepath.Rel(base, fullPath)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if r.ignore.isIgnored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			r.dirs[rel] = true
		} else {
			r.files[rel] = true
		}
		r.paths = append(r.paths, rel)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(r.paths)
	return r, nil
}

func (r *RealDir) GetPaths() ([]string, error) {
	return sortedCopy(r.paths), nil
}

func (r *RealDir) IsFile(path string) bool { return r.files[normalize(path)] }

func (r *RealDir) IsDir(path string) bool {
	p := normalize(path)
	return p == "" || r.dirs[p]
}

func (r *RealDir) OpenFile(path string) ([]byte, bool) {
	p := normalize(path)
	if !r.files[p] {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(r.base, filepath.FromSlash(p)))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (r *RealDir) DecodeJSON(data []byte, path string) (any, bool) {
	return DefaultDecodeJSON(data, path)
}

func (r *RealDir) LoadMeta(path string) (any, bool) {
	data, ok := r.OpenFile(path)
	if !ok {
		return nil, false
	}
	return r.DecodeJSON(data, path)
}

func (r *RealDir) Close() error { return nil }
