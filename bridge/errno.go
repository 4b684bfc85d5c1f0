package bridge

import (
	"errors"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"

	"github.com/artemgoldenberg/ramfs-go/ramfs"
)

// toErrno maps a ramfs sentinel error to the syscall.Errno the kernel
// expects back from a FUSE callback, per spec.md §6's translation table.
// A nil error maps to success (fs.OK); any error this package does not
// recognize becomes EIO rather than panicking, since a host bridge must
// never crash the mount over an unexpected internal error.
func toErrno(err error) syscall.Errno {
	switch {
	case err == nil:
		return fs.OK
	case errors.Is(err, ramfs.ErrNoSuchEntry):
		return syscall.ENOENT
	case errors.Is(err, ramfs.ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, ramfs.ErrNotEmpty):
		return syscall.ENOTEMPTY
	case errors.Is(err, ramfs.ErrAlreadyExists):
		return syscall.EEXIST
	case errors.Is(err, ramfs.ErrOutOfSpace):
		return syscall.ENOSPC
	case errors.Is(err, ramfs.ErrInvalidArgument):
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}
