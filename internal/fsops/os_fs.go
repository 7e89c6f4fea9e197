package fsops

import "os"

// OSFS implements FS using real os package calls
type OSFS struct{}

func (OSFS) ReadDir(dir string) ([]os.DirEntry, error) {
	return os.ReadDir(dir)
}

// Stat follows symlinks, so a linked .lproj bundle counts as a directory
func (OSFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// RemoveAll is idempotent: a missing path returns nil
func (OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
