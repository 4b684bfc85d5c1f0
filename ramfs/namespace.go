package ramfs

import (
	"errors"
	"strings"
	"syscall"
)

// Filesystem owns exactly one inode, the root, a directory whose ".."
// resolves to itself. It is the handle external callers hold; the root
// is never freed while the handle is live.
type Filesystem struct {
	Root *Inode
}

// NewFilesystem allocates a root directory with "." and ".." both
// pointing at itself, link count 3 (its own name from the conceptual
// parent, its own ".", and its "..") and directory-with-full-permission
// mode bits.
func NewFilesystem() *Filesystem {
	root := NewDirectory(syscall.S_IFDIR|0777, 0, 0)
	root.Parent = root
	if _, err := appendEntrySelf(root, ".", root); err != nil {
		panic("ramfs: invalid root self-entry: " + err.Error())
	}
	if _, err := appendEntrySelf(root, "..", root); err != nil {
		panic("ramfs: invalid root self-entry: " + err.Error())
	}
	root.Nlink = 3
	return &Filesystem{Root: root}
}

// Lookup resolves path relative to fs's root. See lookup for the
// component-walk contract.
func (fs *Filesystem) Lookup(path string) (*Inode, error) {
	return lookup(fs.Root, path)
}

// Add links node into the namespace at path. It is used for three
// creation paths:
//
//   - regular-file creation: caller supplies a freshly allocated file
//     inode (NewRegularFile).
//   - directory creation: caller supplies a freshly allocated directory
//     inode (NewDirectory); after Add succeeds, the caller must install
//     "." and ".." via Filesystem.InstallDirEntries.
//   - hard-link creation: caller passes an existing regular-file inode;
//     callers must reject directories before calling Add — Add itself
//     does not check.
//
// Add fails with ErrAlreadyExists if an entry already exists at path,
// and otherwise appends the entry and increments node's link count.
func (fs *Filesystem) Add(path string, node *Inode) (*Inode, error) {
	parent, basename, err := splitPath(fs.Root, path)
	if err != nil {
		return nil, err
	}
	if isDotOrDotDot(basename) {
		return nil, ErrInvalidArgument
	}
	if _, err := lookup(parent, basename); err == nil {
		return nil, ErrAlreadyExists
	}

	e, err := appendEntry(&parent.Entries, basename)
	if err != nil {
		return nil, err
	}
	e.Inode = node

	node.Nlink++
	node.touchCtime()
	if node.Parent == nil {
		node.Parent = parent
	}
	return node, nil
}

// InstallDirEntries installs the "." and ".." entries of a directory
// freshly created by Add. Setting ".." bumps parent's link count by one,
// preserving the "nlink == 2 + subdirectory count" invariant.
func (fs *Filesystem) InstallDirEntries(dir *Inode) error {
	if !dir.IsDir() {
		return ErrNotADirectory
	}
	if _, err := appendEntrySelf(dir, ".", dir); err != nil {
		return err
	}
	parent := dir.Parent
	if _, err := appendEntrySelf(dir, "..", parent); err != nil {
		return err
	}
	dir.Nlink++ // "."
	parent.Nlink++
	parent.touchCtime()
	return nil
}

func appendEntrySelf(dir *Inode, name string, target *Inode) (*Entry, error) {
	e, err := appendEntry(&dir.Entries, name)
	if err != nil {
		return nil, err
	}
	e.Inode = target
	return e, nil
}

// Mkdir creates a new directory at path with the given mode/owner/group,
// combining Add and InstallDirEntries for the common case.
func (fs *Filesystem) Mkdir(path string, mode uint32, owner, group uint32) (*Inode, error) {
	dir := NewDirectory(mode, owner, group)
	if _, err := fs.Add(path, dir); err != nil {
		return nil, err
	}
	if err := fs.InstallDirEntries(dir); err != nil {
		return nil, err
	}
	return dir, nil
}

// Create creates a new, empty regular file at path with the given
// mode/owner/group.
func (fs *Filesystem) Create(path string, mode uint32, owner, group uint32) (*Inode, error) {
	file := NewRegularFile(mode, owner, group)
	return fs.Add(path, file)
}

// Link creates a hard link at path to the existing regular-file inode
// target. It fails with ErrInvalidArgument if target is a directory —
// directories may never be hard-linked.
func (fs *Filesystem) Link(path string, target *Inode) (*Inode, error) {
	if target.IsDir() {
		return nil, ErrInvalidArgument
	}
	return fs.Add(path, target)
}

// Move detaches src's basename from its parent's list and appends it
// under dst's basename in dst's parent's list. Link counts are
// unchanged — one edge removed, one added. A moved directory's Parent
// is repointed at dst's parent.
//
// Move itself performs only the three mechanical steps of spec.md §4.5;
// it does not reject "." / ".." components, prefix-cycles, or an
// existing destination — those are the caller's responsibility (see
// RenameValidated, the whole-path counterpart to RenameChild in
// dirops.go, which performs the same validation for callers that work
// with full paths instead of directory-relative names — the host bridge
// itself calls RenameChild).
func (fs *Filesystem) Move(src, dst string) error {
	srcParent, srcBase, err := splitPath(fs.Root, src)
	if err != nil {
		return err
	}
	dstParent, dstBase, err := splitPath(fs.Root, dst)
	if err != nil {
		return err
	}

	node, err := detachEntry(&srcParent.Entries, srcBase)
	if err != nil {
		return err
	}

	if _, err := appendEntrySelf(dstParent, dstBase, node); err != nil {
		// Roll back: the detach must not be left partially applied.
		if _, reErr := appendEntrySelf(srcParent, srcBase, node); reErr != nil {
			return reErr
		}
		return err
	}
	if node.IsDir() {
		node.Parent = dstParent
	}
	return nil
}

// RenameValidated performs the full set of caller-side checks spec.md
// §4.5 assigns to Move's caller, then calls Move. It is the whole-path
// equivalent of RenameChild (dirops.go), for callers driving the core
// through full paths rather than directory-relative names:
//
//   - rejects "." / ".." path components anywhere named as the basename
//     being moved or moved to;
//   - rejects a destination that is the source path extended by a
//     separator (a prefix-cycle, which would move a directory inside
//     itself);
//   - renaming a path onto itself is a no-op, exactly as RenameChild
//     treats it — checked before any release, so a self-rename can
//     never destroy the source's contents;
//   - otherwise, if the destination already exists, it is released
//     first — unless it is an existing directory, which is always
//     rejected (no recursive delete-and-replace).
//
// Move itself stays minimal, matching spec.md §4.5 literally.
func (fs *Filesystem) RenameValidated(src, dst string) error {
	if isDotOrDotDot(basenameOf(src)) || isDotOrDotDot(basenameOf(dst)) {
		return ErrInvalidArgument
	}
	if dst == src+separator || strings.HasPrefix(dst, src+separator) {
		return ErrInvalidArgument
	}

	node, err := fs.Lookup(src)
	if err != nil {
		return err
	}

	if existing, err := fs.Lookup(dst); err == nil {
		if existing == node {
			return nil
		}
		if existing.IsDir() {
			return ErrAlreadyExists
		}
		if err := fs.Release(dst); err != nil {
			return err
		}
	} else if !errors.Is(err, ErrNoSuchEntry) {
		return err
	}

	return fs.Move(src, dst)
}

func basenameOf(path string) string {
	idx := strings.LastIndex(path, separator)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// Release removes the name at path and, if appropriate, destroys the
// underlying inode.
//
// For a directory: fails with ErrNotEmpty if it holds any entry besides
// "." and "..". Otherwise its ".." entry is detached first (decrementing
// the parent's link count, preserving the directory invariant), then its
// entry list and the inode itself are freed unconditionally — its link
// count is exactly 2 at this point (its own name in the parent, plus its
// own ".") and nothing else references it.
//
// For a regular file: its link count is decremented; if it reaches zero
// and OpenCount is also zero, its contents and the inode are freed. If
// the link count is zero but OpenCount is nonzero, the inode is left
// live; Filesystem.CloseHandle frees its contents once the last open
// handle is closed.
//
// The name edge is always detached from the parent before any freeing
// happens, so the freed inode is never read afterward (spec.md §7's
// no-use-after-free requirement — this inverts the source C
// implementation's visible ordering, which freed before detaching).
func (fs *Filesystem) Release(path string) error {
	parent, basename, err := splitPath(fs.Root, path)
	if err != nil {
		return err
	}
	if isDotOrDotDot(basename) {
		return ErrInvalidArgument
	}

	target, err := lookup(parent, basename)
	if err != nil {
		return err
	}

	if target.IsDir() {
		if entryCount(target.Entries) != 2 {
			return ErrNotEmpty
		}
		if _, err := detachEntry(&target.Entries, ".."); err != nil {
			return err
		}
		parent.Nlink--
		parent.touchCtime()

		if _, err := detachEntry(&parent.Entries, basename); err != nil {
			return err
		}
		// Nothing else references target: free unconditionally.
		target.Entries = nil
		return nil
	}

	target.Nlink--
	target.touchCtime()
	freeNow := target.Nlink == 0 && target.OpenCount == 0

	if _, err := detachEntry(&parent.Entries, basename); err != nil {
		return err
	}
	if freeNow {
		target.Data = nil
	}
	return nil
}

// OpenHandle records that the host bridge has opened the regular file at
// node, incrementing its open count.
func (fs *Filesystem) OpenHandle(node *Inode) {
	node.OpenCount++
}

// CloseHandle records that the host bridge has released an open handle
// on node, decrementing its open count. If the link count is already
// zero (the name was unlinked while the file was open) and this was the
// last open handle, the contents are freed now — the orphan-file case of
// spec.md §4.6 step 3 and §8 Scenario 5.
func (fs *Filesystem) CloseHandle(node *Inode) {
	if node.OpenCount > 0 {
		node.OpenCount--
	}
	if node.Nlink == 0 && node.OpenCount == 0 {
		node.Data = nil
	}
}
