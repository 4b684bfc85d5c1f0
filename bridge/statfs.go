package bridge

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/artemgoldenberg/ramfs-go/ramfs"
)

// statfsBlocks and friends report a synthetic, constant capacity large
// enough that the kernel's own free-space accounting never
// independently triggers ENOSPC on top of the core's own
// ramfs.ErrOutOfSpace (spec.md §4.2) — some platforms refuse to complete
// a mount at all without a Statfs answer.
const (
	statfsBlockSize   = 4096
	statfsBlocks      = 1 << 30
	statfsFreeBlocks  = 1 << 30
	statfsTotalInodes = 1 << 30
	statfsFreeInodes  = 1 << 30
)

var _ fs.NodeStatfser = (*Node)(nil)

// Statfs answers the filesystem-level statvfs(2) query with the
// synthetic capacity numbers above; ramfs itself has no notion of
// total/free space beyond per-allocation ErrOutOfSpace.
func (n *Node) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	out.Blocks = statfsBlocks
	out.Bfree = statfsFreeBlocks
	out.Bavail = statfsFreeBlocks
	out.Files = statfsTotalInodes
	out.Ffree = statfsFreeInodes
	out.Bsize = statfsBlockSize
	out.NameLen = ramfs.MaxNameLength
	return fs.OK
}
