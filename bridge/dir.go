package bridge

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/artemgoldenberg/ramfs-go/ramfs"
)

// Lookup resolves name as a direct child of n. The default go-fuse
// behavior (looking the name up in its own tree cache) would work here
// too, since every child was registered through n.child at creation
// time, but implementing Lookup explicitly keeps attribute data fresh —
// size and timestamps can change between a child's creation and a
// later lookup of it.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child, err := ramfs.LookupChild(n.data, name)
	if err != nil {
		return nil, toErrno(err)
	}
	fillAttr(&out.Attr, child)
	return n.child(ctx, child), fs.OK
}

func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	uid, gid := callerIDs(ctx)
	dir, err := ramfs.MkdirChild(n.data, name, mode, uid, gid)
	if err != nil {
		return nil, toErrno(err)
	}
	fillAttr(&out.Attr, dir)
	return n.child(ctx, dir), fs.OK
}

func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	uid, gid := callerIDs(ctx)
	file, err := ramfs.CreateChild(n.data, name, mode, uid, gid)
	if err != nil {
		return nil, nil, 0, toErrno(err)
	}
	n.fsys.OpenHandle(file)
	fillAttr(&out.Attr, file)
	return n.child(ctx, file), &Handle{data: file}, 0, fs.OK
}

func (n *Node) Link(ctx context.Context, target fs.InodeEmbedder, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	other, ok := target.(*Node)
	if !ok {
		return nil, syscall.EXDEV
	}
	linked, err := ramfs.LinkChild(n.data, name, other.data)
	if err != nil {
		return nil, toErrno(err)
	}
	fillAttr(&out.Attr, linked)
	return n.child(ctx, linked), fs.OK
}

func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return toErrno(ramfs.UnlinkChild(n.data, name))
}

func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return toErrno(ramfs.RmdirChild(n.data, name))
}

func (n *Node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	dst, ok := newParent.(*Node)
	if !ok {
		return syscall.EXDEV
	}
	return toErrno(ramfs.RenameChild(n.data, name, dst.data, newName))
}

func (n *Node) Opendir(ctx context.Context) syscall.Errno {
	if !n.data.IsDir() {
		return syscall.ENOTDIR
	}
	return fs.OK
}

// Readdir snapshots n's entry list into a fixed DirStream. spec.md §5
// assumes serialized access, so nothing can mutate the listing mid-scan,
// but a snapshot still beats streaming the live linked list: a kernel
// READDIR round-trip pages through results across several calls, and by
// then an in-memory filesystem's entries could easily have changed
// underneath a live iterator.
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := ramfs.Readdir(n.data)
	if err != nil {
		return nil, toErrno(err)
	}
	list := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		mode := e.Inode.Mode
		if e.Inode.IsDir() {
			mode |= syscall.S_IFDIR
		} else {
			mode |= syscall.S_IFREG
		}
		list = append(list, fuse.DirEntry{
			Name: e.Name,
			Ino:  e.Inode.Ino,
			Mode: mode,
		})
	}
	return fs.NewListDirStream(list), fs.OK
}
