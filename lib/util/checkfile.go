package util

import (
	"os"
)

// CheckFileExists reports whether fpath exists.
func CheckFileExists(fpath string) bool {
	_, e := os.Stat(fpath)
	return e == nil
}

// CheckDirExists reports whether dir exists and is a directory.
func CheckDirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
