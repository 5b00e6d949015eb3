package dsconfig

import (
	"os"
	"path/filepath"
)

// XDGBaseDirs holds the three XDG Base Directory paths this module
// consults when searching for a config file.
type XDGBaseDirs struct {
	ConfigHome string
	DataHome   string
	CacheHome  string
}

// GetXDGBaseDirs returns the XDG Base Directory paths, falling back to
// HOME-relative defaults when the XDG_* environment variables are unset.
func GetXDGBaseDirs() XDGBaseDirs {
	return XDGBaseDirs{
		ConfigHome: xdgDir("XDG_CONFIG_HOME", ".config"),
		DataHome:   xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")),
		CacheHome:  xdgDir("XDG_CACHE_HOME", ".cache"),
	}
}

func xdgDir(envVar, homeRelative string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, homeRelative)
	}
	return ""
}

// SearchPaths returns, in precedence order (highest precedence first), the
// locations Load consults for an on-disk config file: the XDG config
// directory, a dot-directory in HOME, and the current directory.
func SearchPaths(appName string) []string {
	xdg := GetXDGBaseDirs()
	home := os.Getenv("HOME")

	var paths []string
	if xdg.ConfigHome != "" {
		paths = append(paths,
			filepath.Join(xdg.ConfigHome, appName, "config.yaml"),
			filepath.Join(xdg.ConfigHome, appName, "config.json"),
		)
	}
	if home != "" {
		paths = append(paths,
			filepath.Join(home, "."+appName, "config.yaml"),
			filepath.Join(home, "."+appName+".yaml"),
		)
	}
	paths = append(paths, "./"+appName+".yaml", "./"+appName+".json")
	return paths
}
