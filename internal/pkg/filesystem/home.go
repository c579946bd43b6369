package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// AppDirName is the per-user state directory under $HOME.
const AppDirName = ".aicmd"

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// AppDir returns ~/.aicmd.
func AppDir() string {
	return filepath.Join(UserHomeDir(), AppDirName)
}

// AppPath joins elems under ~/.aicmd.
func AppPath(elems ...string) string {
	return filepath.Join(append([]string{AppDir()}, elems...)...)
}

// ExpandHome resolves a leading "~" or "~/" against the home directory.
// Other paths are returned unchanged.
func ExpandHome(path string) string {
	if path == "~" {
		return UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	return path
}
