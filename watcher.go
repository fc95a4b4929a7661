package mirrorfs

import (
	"log"

	"github.com/aweris/mirrorfs/internal/fswatch"
)

// NewWatcher creates a standalone fsnotify-backed watcher for the immediate
// entries of dir, suitable for sharing between several caches via
// WithWatcher. The caller owns its lifecycle: caches bound to it subscribe
// and unsubscribe but never close it.
func NewWatcher(dir string, logger *log.Logger) (Watcher, error) {
	return fswatch.New(dir, fswatch.Options{Logger: logger})
}
