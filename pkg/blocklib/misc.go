// Package blocklib implements the freshness-check-and-download
// orchestration core: it decides when a newer blocklist artifact set is
// available and drives the download, completion-watch and file-install
// pipeline that brings it onto disk.
package blocklib

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigDirEnv overrides the default configuration directory.
const ConfigDirEnv = "BLOCKLISTD_CONFIG_DIR"

var (
	// ConfigDir is the absolute path to the blocklistd configuration directory.
	ConfigDir string
	// DataDir is the absolute path to the artifact data directory, the root
	// of every class/namespace layout.
	DataDir string
)

func init() {
	dir := os.Getenv(ConfigDirEnv)
	if dir == "" {
		dir = defaultConfigDir()
	}
	if err := setConfigDir(dir); err != nil {
		panic(err)
	}
}

func defaultConfigDir() string {
	cdr, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(cdr, "blocklistd")
}

func setConfigDir(dir string) error {
	if dir == "" {
		return errors.New("config dir is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return err
	}
	ConfigDir = abs
	DataDir = filepath.Join(abs, "artifacts")
	return os.MkdirAll(DataDir, 0o755)
}

// SetConfigDir points the configuration directory at dir, creating it and
// the artifact data directory if needed.
func SetConfigDir(dir string) error {
	return setConfigDir(dir)
}

// GetPath joins a directory and file name using the OS path separator.
func GetPath(directory, file string) string {
	return filepath.Join(directory, file)
}
