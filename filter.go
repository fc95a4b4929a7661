package mirrorfs

import "path"

// Filter decides which entry names the cache tracks. The zero value keeps
// everything. A filter is resolved once at Open and never consulted again
// for names it already rejected.
type Filter struct {
	pattern string
	fn      func(string) bool
}

// FilterPattern keeps names matching a glob pattern (path.Match syntax).
func FilterPattern(pattern string) Filter {
	return Filter{pattern: pattern}
}

// FilterFunc uses the predicate verbatim: the entry is tracked when fn
// returns true. The caller owns the keep/drop sense, unlike FilterPattern
// which always keeps matches.
func FilterFunc(fn func(name string) bool) Filter {
	return Filter{fn: fn}
}

// resolve collapses the variant into a single keep predicate.
func (f Filter) resolve() func(string) bool {
	switch {
	case f.fn != nil:
		return f.fn
	case f.pattern != "":
		pattern := f.pattern
		return func(name string) bool {
			ok, err := path.Match(pattern, name)
			return err == nil && ok
		}
	default:
		return func(string) bool { return true }
	}
}
