package cliconfig

import (
	"os"
	"path/filepath"
)

const (
	dataDirName = "openpath"
	logFileName = "native-host.log"
)

// ResolveLogPath picks the debug log location: $XDG_DATA_HOME/openpath
// when set, else ~/.local/share/openpath, else a file in the OS temp
// directory when the data directory cannot be created. The temp
// fallback never fails.
func ResolveLogPath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		}
	}
	if dir != "" {
		dataDir := filepath.Join(dir, dataDirName)
		if err := os.MkdirAll(dataDir, 0o755); err == nil {
			return filepath.Join(dataDir, logFileName)
		}
	}
	return filepath.Join(os.TempDir(), "openpath-native-host.log")
}
