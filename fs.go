package mirrorfs

import (
	"io/fs"
	"os"

	"github.com/aweris/mirrorfs/internal/fswatch"
)

// BatchOp identifies the kind of change a watcher batch reports.
// Re-exported from internal/fswatch for convenience.
type BatchOp = fswatch.Op

const (
	// BatchAdd reports names newly present in the directory.
	BatchAdd = fswatch.OpAdd
	// BatchChange reports names whose content changed.
	BatchChange = fswatch.OpChange
	// BatchDelete reports names removed from the directory.
	BatchDelete = fswatch.OpDelete
)

// Batch is one watcher notification: an operation reported for a non-empty
// set of directory-relative names.
type Batch = fswatch.Batch

// Handle releases a single watcher subscription.
type Handle = fswatch.Handle

// Watcher delivers change batches for a single watched directory.
//
// A Watcher may be shared between consumers: Subscribe registers one callback
// and the returned Handle removes exactly that callback, leaving other
// subscribers attached. Names reports the entries the watcher currently
// knows about, used to seed a cache bound to an existing watcher.
type Watcher interface {
	Subscribe(fn func(Batch)) Handle
	Names() []string
	Close() error
}

// FileSystem is the raw I/O boundary the cache reads through. The default
// implementation is the host filesystem; tests substitute failure-injecting
// fakes.
type FileSystem interface {
	// List returns the immediate entry names of a directory.
	List(dir string) ([]string, error)

	// Stat queries metadata for a path.
	Stat(path string) (fs.FileInfo, error)

	// ReadFile reads a whole file.
	ReadFile(path string) ([]byte, error)
}

// osFS implements FileSystem on the host filesystem.
type osFS struct{}

func (osFS) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func (osFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (osFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
