package mirrorfs

import "log"

// DefaultConcurrency bounds parallel probe and read operations per batch.
const DefaultConcurrency = 4

// DefaultJSONExtension is the suffix that marks entries for JSON decoding.
const DefaultJSONExtension = ".json"

// OpenOptions configures a Cache.
type OpenOptions struct {
	Filter           Filter
	Watcher          Watcher
	FileSystem       FileSystem
	JSON             bool
	JSONExtension    string
	Concurrency      int
	CompressionLevel int
	Logger           *log.Logger
}

// Option is a functional option for configuring Open.
type Option func(*OpenOptions)

func defaultOptions() *OpenOptions {
	return &OpenOptions{
		FileSystem:    osFS{},
		JSONExtension: DefaultJSONExtension,
		Concurrency:   DefaultConcurrency,
	}
}

// WithFilter restricts which entry names the cache tracks.
func WithFilter(filter Filter) Option {
	return func(o *OpenOptions) { o.Filter = filter }
}

// WithWatcher binds the cache to an existing watcher instead of creating
// one. The cache subscribes on Start and unsubscribes on Stop; it never
// closes a watcher it did not create.
func WithWatcher(watcher Watcher) Option {
	return func(o *OpenOptions) { o.Watcher = watcher }
}

// WithFileSystem substitutes the raw I/O layer. Used by tests.
func WithFileSystem(fsys FileSystem) Option {
	return func(o *OpenOptions) {
		if fsys != nil {
			o.FileSystem = fsys
		}
	}
}

// WithJSON enables JSON decoding for matching entries from the start.
func WithJSON() Option {
	return func(o *OpenOptions) { o.JSON = true }
}

// WithJSONExtension sets the suffix, matched case-insensitively, that marks
// entries for JSON decoding.
func WithJSONExtension(ext string) Option {
	return func(o *OpenOptions) {
		if ext != "" {
			o.JSONExtension = ext
		}
	}
}

// WithConcurrency sets the number of parallel probe/read operations.
func WithConcurrency(n int) Option {
	return func(o *OpenOptions) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithCompression stores raw content zstd-compressed in memory
// (level 1 fastest, 2 default, 3 best).
func WithCompression(level int) Option {
	return func(o *OpenOptions) { o.CompressionLevel = level }
}

// WithLogger directs cache and watcher warnings to a logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *OpenOptions) { o.Logger = logger }
}
