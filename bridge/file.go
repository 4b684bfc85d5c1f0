package bridge

import (
	"context"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/artemgoldenberg/ramfs-go/ramfs"
)

// Handle is the FileHandle go-fuse hands back to the kernel for an open
// regular file. It carries the ramfs.Inode directly rather than a
// separate descriptor table, matching spec.md §6's "per-open-file
// opaque handle" shape: there is no underlying OS file descriptor to
// multiplex, just the one in-memory Data slice the Filesystem already
// tracks OpenCount against.
type Handle struct {
	data *ramfs.Inode
}

var (
	_ fs.FileReader = (*Handle)(nil)
	_ fs.FileWriter = (*Handle)(nil)
)

func (h *Handle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if off < 0 || off > int64(len(h.data.Data)) {
		return fuse.ReadResultData(nil), fs.OK
	}
	end := off + int64(len(dest))
	if end > int64(len(h.data.Data)) {
		end = int64(len(h.data.Data))
	}
	return fuse.ReadResultData(h.data.Data[off:end]), fs.OK
}

func (h *Handle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	end := off + int64(len(data))
	if end > int64(len(h.data.Data)) {
		grown := make([]byte, end)
		copy(grown, h.data.Data)
		h.data.Data = grown
	}
	n := copy(h.data.Data[off:end], data)
	h.data.Size = int64(len(h.data.Data))
	return uint32(n), fs.OK
}

// Open opens the regular file named by n for reading and/or writing,
// registering one ramfs open handle so a concurrent unlink leaves the
// contents live until every Release has run (spec.md §4.6 step 3,
// §8 Scenario 5).
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if n.data.IsDir() {
		return nil, 0, syscall.EISDIR
	}
	n.fsys.OpenHandle(n.data)
	return &Handle{data: n.data}, 0, fs.OK
}

func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if fh, ok := f.(*Handle); ok {
		return fh.Read(ctx, dest, off)
	}
	h := &Handle{data: n.data}
	return h.Read(ctx, dest, off)
}

func (n *Node) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	var written uint32
	var errno syscall.Errno
	if fh, ok := f.(*Handle); ok {
		written, errno = fh.Write(ctx, data, off)
	} else {
		h := &Handle{data: n.data}
		written, errno = h.Write(ctx, data, off)
	}
	if errno == fs.OK {
		now := time.Now()
		n.data.Mtime = now
		n.data.Ctime = now
	}
	return written, errno
}

func (n *Node) Flush(ctx context.Context, f fs.FileHandle) syscall.Errno {
	return fs.OK
}

// Release closes the handle opened by Open/Create, decrementing the
// underlying inode's open count. If the name was unlinked while the
// handle was open, this is what finally frees its contents.
func (n *Node) Release(ctx context.Context, f fs.FileHandle) syscall.Errno {
	data := n.data
	if fh, ok := f.(*Handle); ok {
		data = fh.data
	}
	n.fsys.CloseHandle(data)
	return fs.OK
}

func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fillAttr(&out.Attr, n.data)
	return fs.OK
}

// Setattr applies the subset of in that the kernel actually populated
// (in.GetMode/GetUID/GetGID/GetSize/GetMTime/GetATime each report
// whether the corresponding field was set), following the same
// selective-update shape as the host bridges in the examples this one
// is built from.
func (n *Node) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	data := n.data
	if fh, ok := f.(*Handle); ok {
		data = fh.data
	}

	if mode, ok := in.GetMode(); ok {
		data.Mode = mode
		data.Ctime = time.Now()
	}
	uid, uok := in.GetUID()
	gid, gok := in.GetGID()
	if uok {
		data.Owner = uid
	}
	if gok {
		data.Group = gid
	}
	if uok || gok {
		data.Ctime = time.Now()
	}
	if sz, ok := in.GetSize(); ok {
		if err := truncate(data, int64(sz)); err != fs.OK {
			return err
		}
	}
	if mtime, ok := in.GetMTime(); ok {
		data.Mtime = mtime
	}
	if atime, ok := in.GetATime(); ok {
		data.Atime = atime
	}

	fillAttr(&out.Attr, data)
	return fs.OK
}

// truncate resizes a regular file's contents to size bytes, zero-filling
// any growth. Directories reject Setattr's size field outright.
func truncate(data *ramfs.Inode, size int64) syscall.Errno {
	if data.IsDir() {
		return syscall.EISDIR
	}
	if size < 0 {
		return syscall.EINVAL
	}
	switch {
	case size == int64(len(data.Data)):
	case size < int64(len(data.Data)):
		data.Data = data.Data[:size]
	default:
		grown := make([]byte, size)
		copy(grown, data.Data)
		data.Data = grown
	}
	data.Size = size
	data.Mtime = time.Now()
	data.Ctime = data.Mtime
	return fs.OK
}
