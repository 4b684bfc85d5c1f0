package ramfs

import "strings"

const separator = "/"

// lookup resolves path relative to start, one component at a time. A
// leading separator is permitted and ignored — resolution is always
// relative to start, never to any notion of an absolute root other than
// start itself. An empty path resolves to start.
//
// Consecutive separators produce an empty component, which matches no
// entry (names are never empty, by invariant) and so fails with
// ErrNoSuchEntry — this is the documented choice for the case spec.md
// §4.1 leaves to implementers.
func lookup(start *Inode, path string) (*Inode, error) {
	path = strings.TrimPrefix(path, separator)
	if path == "" {
		return start, nil
	}

	cur := start
	for _, comp := range strings.Split(path, separator) {
		if !cur.IsDir() {
			return nil, ErrNotADirectory
		}
		e := findEntry(cur.Entries, comp)
		if e == nil {
			return nil, ErrNoSuchEntry
		}
		cur = e.Inode
	}
	return cur, nil
}

// splitPath divides path into a (parent directory, basename) pair. path
// must be non-empty and begin with the separator; the last separator
// divides prefix (resolved via lookup from root) from the basename,
// which must be non-empty.
func splitPath(root *Inode, path string) (parent *Inode, basename string, err error) {
	if path == "" || !strings.HasPrefix(path, separator) {
		return nil, "", ErrInvalidArgument
	}

	idx := strings.LastIndex(path, separator)
	prefix := path[:idx]
	basename = path[idx+1:]
	if basename == "" {
		return nil, "", ErrNoSuchEntry
	}

	parent, err = lookup(root, prefix)
	if err != nil {
		return nil, "", err
	}
	if !parent.IsDir() {
		return nil, "", ErrNotADirectory
	}
	return parent, basename, nil
}

// isDotOrDotDot reports whether a path component is exactly "." or "..".
func isDotOrDotDot(name string) bool {
	return name == "." || name == ".."
}
