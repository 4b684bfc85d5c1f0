package ramfs

// The Filesystem methods in namespace.go operate on whole paths from the
// root, matching spec.md §4's literal contracts and making the package
// directly testable against spec.md §8's scenarios. A host bridge,
// however, dispatches one path component at a time — the kernel already
// did the walk down to the parent directory by the time it calls
// Lookup/Mkdir/Create/Unlink/Rmdir/Rename on that directory's node — so
// it should not reconstruct and re-walk a full path string on every
// call. spec.md §6 says as much: "the collaborator ... may store one
// [inode] handle per open file or open directory to avoid repeated path
// walks on every I/O call." These directory-relative entry points let it
// do exactly that; they share the same entry-list primitives as the
// path-based API above, just addressed by (parent *Inode, name string)
// instead of (root *Inode, path string).

// LookupChild resolves a single name within parent. parent must be a
// directory.
func LookupChild(parent *Inode, name string) (*Inode, error) {
	if !parent.IsDir() {
		return nil, ErrNotADirectory
	}
	e := findEntry(parent.Entries, name)
	if e == nil {
		return nil, ErrNoSuchEntry
	}
	return e.Inode, nil
}

// AddChild links node into parent under name, exactly as Filesystem.Add
// does for a whole path. Fails with ErrAlreadyExists if name is already
// bound in parent.
func AddChild(parent *Inode, name string, node *Inode) error {
	if !parent.IsDir() {
		return ErrNotADirectory
	}
	if isDotOrDotDot(name) {
		return ErrInvalidArgument
	}
	if _, err := LookupChild(parent, name); err == nil {
		return ErrAlreadyExists
	}

	e, err := appendEntry(&parent.Entries, name)
	if err != nil {
		return err
	}
	e.Inode = node

	node.Nlink++
	node.touchCtime()
	if node.Parent == nil {
		node.Parent = parent
	}
	return nil
}

// MkdirChild creates a new directory named name inside parent.
func MkdirChild(parent *Inode, name string, mode uint32, owner, group uint32) (*Inode, error) {
	dir := NewDirectory(mode, owner, group)
	dir.Parent = parent
	if err := AddChild(parent, name, dir); err != nil {
		return nil, err
	}
	if err := installDirEntries(dir); err != nil {
		return nil, err
	}
	return dir, nil
}

func installDirEntries(dir *Inode) error {
	if _, err := appendEntrySelf(dir, ".", dir); err != nil {
		return err
	}
	parent := dir.Parent
	if _, err := appendEntrySelf(dir, "..", parent); err != nil {
		return err
	}
	dir.Nlink++
	parent.Nlink++
	parent.touchCtime()
	return nil
}

// CreateChild creates a new, empty regular file named name inside
// parent.
func CreateChild(parent *Inode, name string, mode uint32, owner, group uint32) (*Inode, error) {
	file := NewRegularFile(mode, owner, group)
	if err := AddChild(parent, name, file); err != nil {
		return nil, err
	}
	return file, nil
}

// LinkChild hard-links the existing regular-file inode target into
// parent under name. Fails with ErrInvalidArgument if target is a
// directory.
func LinkChild(parent *Inode, name string, target *Inode) (*Inode, error) {
	if target.IsDir() {
		return nil, ErrInvalidArgument
	}
	if err := AddChild(parent, name, target); err != nil {
		return nil, err
	}
	return target, nil
}

// UnlinkChild removes a non-directory entry named name from parent,
// following spec.md §4.6's regular-file release steps. It fails with
// ErrInvalidArgument if the named entry is a directory — removing
// directories goes through RmdirChild instead, mirroring the POSIX
// unlink(2)/rmdir(2) split the host bridge presents to callers (the
// core's own six-member error surface, spec.md §6, has no EISDIR
// equivalent; this check exists only to keep the two entry points from
// doing each other's job).
func UnlinkChild(parent *Inode, name string) error {
	target, err := LookupChild(parent, name)
	if err != nil {
		return err
	}
	if target.IsDir() {
		return ErrInvalidArgument
	}

	target.Nlink--
	target.touchCtime()
	freeNow := target.Nlink == 0 && target.OpenCount == 0

	if _, err := detachEntry(&parent.Entries, name); err != nil {
		return err
	}
	if freeNow {
		target.Data = nil
	}
	return nil
}

// RmdirChild removes the empty directory named name from parent,
// following spec.md §4.6's directory release steps. Fails with
// ErrNotEmpty if the directory holds any entry besides "." and "..", and
// with ErrInvalidArgument if the named entry is not a directory.
func RmdirChild(parent *Inode, name string) error {
	if isDotOrDotDot(name) {
		return ErrInvalidArgument
	}
	target, err := LookupChild(parent, name)
	if err != nil {
		return err
	}
	if !target.IsDir() {
		return ErrInvalidArgument
	}
	if entryCount(target.Entries) != 2 {
		return ErrNotEmpty
	}

	if _, err := detachEntry(&target.Entries, ".."); err != nil {
		return err
	}
	parent.Nlink--
	parent.touchCtime()

	if _, err := detachEntry(&parent.Entries, name); err != nil {
		return err
	}
	target.Entries = nil
	return nil
}

// isOrHasAncestor reports whether candidate is start itself or one of
// start's containing directories, walking the Parent chain up to the
// root's self-reference. Directories are never hard-linked (spec.md
// §4.4), so a directory's Parent always reflects its one true containing
// directory, making this chain walk exact rather than approximate.
func isOrHasAncestor(start, candidate *Inode) bool {
	for cur := start; ; {
		if cur == candidate {
			return true
		}
		if cur.Parent == cur {
			return false
		}
		cur = cur.Parent
	}
}

// RenameChild moves the entry named oldName in oldParent to newName in
// newParent, performing the same validation RenameValidated performs for
// whole paths: rejecting "." / ".." components, rejecting a destination
// that is the source itself or lies anywhere within the source's own
// subtree (a prefix-cycle, spec.md §4.5(b) — this must walk newParent's
// full ancestor chain, not just check newParent against node directly,
// since the kernel may hand newParent as a node several levels inside
// node's own subtree in a single Rename call), releasing an existing
// non-directory destination first, and rejecting an existing directory
// destination outright.
func RenameChild(oldParent *Inode, oldName string, newParent *Inode, newName string) error {
	if isDotOrDotDot(oldName) || isDotOrDotDot(newName) {
		return ErrInvalidArgument
	}

	node, err := LookupChild(oldParent, oldName)
	if err != nil {
		return err
	}
	if node.IsDir() && isOrHasAncestor(newParent, node) {
		return ErrInvalidArgument
	}

	if existing, err := LookupChild(newParent, newName); err == nil {
		if existing == node {
			return nil
		}
		if existing.IsDir() {
			return ErrAlreadyExists
		}
		if err := UnlinkChild(newParent, newName); err != nil {
			return err
		}
	} else if err != ErrNoSuchEntry {
		return err
	}

	detached, err := detachEntry(&oldParent.Entries, oldName)
	if err != nil {
		return err
	}

	e, err := appendEntry(&newParent.Entries, newName)
	if err != nil {
		if _, reErr := appendEntrySelf(oldParent, oldName, detached); reErr != nil {
			return reErr
		}
		return err
	}
	e.Inode = detached
	if detached.IsDir() {
		detached.Parent = newParent
	}
	return nil
}

// Readdir returns the current entries of dir in list order, including
// "." and "..", as (name, inode) pairs. The caller should treat the
// result as a snapshot: spec.md §5 assumes serialized access, so no
// mutation can interleave with the scan itself, but the slice is not
// live after Readdir returns.
func Readdir(dir *Inode) ([]DirEntry, error) {
	if !dir.IsDir() {
		return nil, ErrNotADirectory
	}
	var out []DirEntry
	for e := dir.Entries; e != nil; e = e.next {
		out = append(out, DirEntry{Name: e.Name, Inode: e.Inode})
	}
	return out, nil
}

// DirEntry is a name/inode pair returned by Readdir.
type DirEntry struct {
	Name  string
	Inode *Inode
}
