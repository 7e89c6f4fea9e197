package fsops

import "os"

// FS abstracts the filesystem calls made while pruning a resource directory
// Enables fakes in tests to prove dry-run never deletes
type FS interface {
	ReadDir(dir string) ([]os.DirEntry, error)
	Stat(path string) (os.FileInfo, error)
	RemoveAll(path string) error
}
