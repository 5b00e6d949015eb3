package adapter

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const ignoreFileName = ".dirschemaignore"

// ignoreMatcher applies .dirschemaignore glob patterns to paths relative to
// a RealDir's base, gitignore-style: a pattern with no "/" matches a
// basename anywhere in the tree; a pattern ending in "/" matches a
// directory and everything under it.
type ignoreMatcher struct {
	patterns []string
}

func loadIgnoreMatcher(base string) (*ignoreMatcher, error) {
	m := &ignoreMatcher{}
	path := filepath.Join(base, ignoreFileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, line)
	}
	return m, scanner.Err()
}

func (m *ignoreMatcher) isIgnored(relPath string) bool {
	normalizedPath := filepath.ToSlash(relPath)

	for _, pattern := range m.patterns {
		normalizedPattern := filepath.ToSlash(pattern)

		if strings.HasSuffix(normalizedPattern, "/") {
			dirPattern := strings.TrimSuffix(normalizedPattern, "/")
			if normalizedPath == dirPattern || strings.HasPrefix(normalizedPath, dirPattern+"/") {
				return true
			}
		}

		if matched, err := doublestar.Match(normalizedPattern, normalizedPath); err == nil && matched {
			return true
		}

		if !strings.Contains(normalizedPattern, "/") {
			if matched, err := doublestar.Match(normalizedPattern, filepath.Base(normalizedPath)); err == nil && matched {
				return true
			}
		}

		if strings.HasPrefix(normalizedPath, normalizedPattern+"/") {
			return true
		}
	}
	return false
}
