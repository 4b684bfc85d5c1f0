// Package bridge adapts a ramfs.Filesystem to the host filesystem-bridge
// callbacks the go-fuse library expects, by implementing its
// fs.InodeEmbedder node interfaces over the ramfs in-memory inode graph.
// This is the "external collaborator" spec.md §1 places out of scope for
// the core: it owns attribute/entry wire marshalling and the FUSE kernel
// round-trip, both delegated to the real github.com/hanwen/go-fuse/v2
// library. Mount options and the mount call itself live in cmd/ramfs.
package bridge

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/artemgoldenberg/ramfs-go/ramfs"
)

// Node wraps a single ramfs.Inode as a go-fuse tree node. The host bridge
// holds one Node per path it has looked up; the underlying ramfs.Inode
// handle lets it skip repeated path walks on every I/O call, per
// spec.md §6.
type Node struct {
	fs.Inode

	fsys *ramfs.Filesystem
	data *ramfs.Inode
}

var (
	_ fs.InodeEmbedder = (*Node)(nil)
	_ fs.NodeLookuper  = (*Node)(nil)
	_ fs.NodeMkdirer   = (*Node)(nil)
	_ fs.NodeCreater   = (*Node)(nil)
	_ fs.NodeUnlinker  = (*Node)(nil)
	_ fs.NodeRmdirer   = (*Node)(nil)
	_ fs.NodeRenamer   = (*Node)(nil)
	_ fs.NodeLinker    = (*Node)(nil)
	_ fs.NodeOpendirer = (*Node)(nil)
	_ fs.NodeReaddirer = (*Node)(nil)
	_ fs.NodeOpener    = (*Node)(nil)
	_ fs.NodeReader    = (*Node)(nil)
	_ fs.NodeWriter    = (*Node)(nil)
	_ fs.NodeGetattrer = (*Node)(nil)
	_ fs.NodeSetattrer = (*Node)(nil)
)

// NewRoot builds the go-fuse tree root wrapping fsys's root directory.
func NewRoot(fsys *ramfs.Filesystem) fs.InodeEmbedder {
	return &Node{fsys: fsys, data: fsys.Root}
}

// stableAttr derives the go-fuse StableAttr for this node's underlying
// inode: the kind bits folded into Mode, and Ino carried straight from
// ramfs.Inode.Ino so hard links to the same inode report the same
// st_ino to the kernel.
func (n *Node) stableAttr() fs.StableAttr {
	mode := n.data.Mode
	if n.data.IsDir() {
		mode |= syscall.S_IFDIR
	} else {
		mode |= syscall.S_IFREG
	}
	return fs.StableAttr{
		Mode: mode,
		Ino:  n.data.Ino,
	}
}

// child wraps data as a new go-fuse child of n, registering it in the
// go-fuse kernel-facing tree.
func (n *Node) child(ctx context.Context, data *ramfs.Inode) *fs.Inode {
	node := &Node{fsys: n.fsys, data: data}
	return n.NewInode(ctx, node, node.stableAttr())
}

// fillAttr copies data's metadata into a fuse.Attr, the shape Getattr,
// Setattr, Lookup, Mkdir, Create and Link all report back to the
// kernel.
func fillAttr(out *fuse.Attr, data *ramfs.Inode) {
	out.Ino = data.Ino
	out.Size = uint64(data.Size)
	out.Mode = data.Mode
	if data.IsDir() {
		out.Mode |= syscall.S_IFDIR
	} else {
		out.Mode |= syscall.S_IFREG
	}
	out.Nlink = data.Nlink
	out.Uid = data.Owner
	out.Gid = data.Group

	atime := data.Atime
	mtime := data.Mtime
	ctime := data.Ctime
	out.Atime = uint64(atime.Unix())
	out.Atimensec = uint32(atime.Nanosecond())
	out.Mtime = uint64(mtime.Unix())
	out.Mtimensec = uint32(mtime.Nanosecond())
	out.Ctime = uint64(ctime.Unix())
	out.Ctimensec = uint32(ctime.Nanosecond())
}

// callerIDs reads the requesting uid/gid out of ctx, falling back to
// root (0, 0) when the bridge is invoked outside of a real FUSE request
// — e.g. from a test harness that does not populate fuse.Context.
func callerIDs(ctx context.Context) (uid, gid uint32) {
	if caller, ok := fuse.FromContext(ctx); ok {
		return caller.Uid, caller.Gid
	}
	return 0, 0
}
