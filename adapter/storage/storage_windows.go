//go:build windows

package storage

import (
	"os"
	"path/filepath"
)

func init() {
	osSpecificEnsureDir = ensureDirWindows
	osSpecificSync = syncWindows
}

// ensureDirWindows skips volume roots such as C:\, which MkdirAll rejects.
func ensureDirWindows(o osOps, dir string, mode os.FileMode) error {
	if dir == filepath.VolumeName(dir)+string(os.PathSeparator) {
		return nil
	}
	return o.MkdirAll(dir, mode)
}

// syncWindows skips directories, which cannot be flushed on Windows.
func syncWindows(f *os.File, isDir bool) error {
	if isDir {
		return nil
	}
	return f.Sync()
}
