// Package mirrorfs maintains an in-memory, continuously synchronized mirror
// of a directory's files and their contents.
//
// A Cache reads every entry of one directory up front, then keeps itself
// current from filesystem notifications. Consumers read content by name
// without touching the disk on access.
//
// Basic usage:
//
//	cache, _ := mirrorfs.Open("/etc/myapp", mirrorfs.WithJSON())
//	if err := cache.Start(ctx); err != nil { ... }
//	defer cache.Stop()
//
//	// Read content by name
//	content, ok := cache.Get("config.json")
//	value, _ := content.JSON()
//
//	// List mirrored entries
//	for _, name := range cache.Filenames() { ... }
//
// Track a subset of the directory:
//
//	cache, _ := mirrorfs.Open(dir, mirrorfs.WithFilter(mirrorfs.FilterPattern("*.yaml")))
//
// React to changes:
//
//	cache.Notify(mirrorfs.EventUpdated, func(e mirrorfs.Event) {
//	    log.Printf("%s changed: %s", e.Name, e.Content)
//	})
//
// Share one watcher between consumers:
//
//	w, _ := mirrorfs.NewWatcher(dir, nil)
//	cache, _ := mirrorfs.Open(dir, mirrorfs.WithWatcher(w))
//
// Watcher notifications race with the filesystem. A name reported as added
// may already be gone, or may turn out to be a subdirectory, by the time it
// is probed; such entries are cached with no content rather than failing.
// Per-entry read faults surface through EventError and never halt the
// mirror.
package mirrorfs
