package ramfs

import (
	"sync/atomic"
	"time"
)

// nextIno hands out stable inode numbers, unique for the process
// lifetime of the package. A host bridge needs these to report
// consistent st_ino values across hard links to the same Inode.
var nextIno uint64

func allocIno() uint64 {
	return atomic.AddUint64(&nextIno, 1)
}

// Kind identifies the filesystem-object type of an Inode. The core only
// ever interprets these two kinds; permission bits travel alongside but
// are never checked.
type Kind uint8

const (
	KindDirectory Kind = iota
	KindRegular
)

// MaxNameLength bounds a single path component, mirroring the platform
// filename limit (NAME_MAX on Linux).
const MaxNameLength = 255

// Inode is the metadata record for one filesystem object, independent of
// any name. Directories and regular files share this record shape; which
// fields are meaningful depends on Kind.
type Inode struct {
	// Ino is a stable, process-lifetime-unique identifier, handed out
	// once at allocation. It exists so a host bridge can report a
	// consistent st_ino across multiple hard links to this Inode; the
	// core itself never reads it.
	Ino uint64

	Kind Kind

	// Mode mirrors POSIX st_mode: kind bits plus permission bits. Only
	// the kind is interpreted by this package; permission bits are
	// stored verbatim for the host bridge to report back.
	Mode uint32

	// Owner and Group are opaque numeric identifiers, stored but never
	// interpreted.
	Owner, Group uint32

	// Nlink counts incoming name edges. For a regular file this is the
	// number of hard links. For a directory it is 2 plus the number of
	// child subdirectories: one for the directory's own name in its
	// parent, one for its own ".", and one per child's "..".
	Nlink uint32

	// OpenCount tracks outstanding open handles the host bridge holds.
	// Only regular files ever have a nonzero OpenCount.
	OpenCount uint32

	// Size is the byte length of Data. Unused for directories.
	Size int64

	// Data holds a regular file's byte contents. Unused for
	// directories, whose contents live in Entries instead.
	Data []byte

	// Entries is the head of a directory's entry list. Unused for
	// regular files.
	Entries *Entry

	// Parent is a back-reference to the directory that first linked
	// this inode. It seeds a new directory's ".." and is never
	// followed by the resolver. Moving a directory (Move, RenameChild)
	// repoints it at the new containing directory. The root tolerates
	// Parent == itself.
	Parent *Inode

	Atime, Mtime, Ctime time.Time

	// teardownMark is set the first time Teardown visits this inode,
	// so cycles formed by "." and ".." terminate instead of looping.
	teardownMark bool
}

// IsDir reports whether the inode is a directory.
func (n *Inode) IsDir() bool {
	return n.Kind == KindDirectory
}

// newInode allocates a bare inode of the given kind with the given mode,
// owner, and group, and stamps its timestamps to now.
func newInode(kind Kind, mode uint32, owner, group uint32) *Inode {
	now := time.Now()
	return &Inode{
		Ino:   allocIno(),
		Kind:  kind,
		Mode:  mode,
		Owner: owner,
		Group: group,
		Atime: now,
		Mtime: now,
		Ctime: now,
	}
}

// NewDirectory allocates a directory inode with no entries and Nlink 0.
// Callers must link it into a parent via Filesystem.Add and then install
// "." and ".." via Filesystem.InstallDirEntries (Filesystem.Mkdir does
// both).
func NewDirectory(mode uint32, owner, group uint32) *Inode {
	return newInode(KindDirectory, mode, owner, group)
}

// NewRegularFile allocates a regular-file inode with empty contents and
// Nlink 0. Callers must link it via Filesystem.Add.
func NewRegularFile(mode uint32, owner, group uint32) *Inode {
	return newInode(KindRegular, mode, owner, group)
}

// touchMtime updates Mtime and Ctime to now, used whenever a file's
// contents change.
func (n *Inode) touchMtime() {
	now := time.Now()
	n.Mtime = now
	n.Ctime = now
}

// touchCtime updates Ctime alone, used whenever metadata (mode, owner,
// group, link count) changes without touching contents.
func (n *Inode) touchCtime() {
	n.Ctime = time.Now()
}
