// Package ramfs implements the in-memory inode graph and path resolver
// of a POSIX-like filesystem: directory and regular-file inodes linked by
// named entries, hard links, rename-with-overwrite, unlink-while-open
// semantics, and whole-tree teardown of a graph that contains the
// self-referential "." and ".." edges every directory carries.
//
// Nothing here persists: a Filesystem's entire state lives in the inodes
// and entries it owns, and disappears when Teardown runs. Permission bits
// are stored verbatim and never checked. The package assumes serialized,
// single-threaded access — a caller driving it from multiple goroutines
// must hold its own mutex around every call.
package ramfs

import "errors"

// The error surface of every path operation. Callers compare with
// errors.Is; a host bridge translates each to the matching POSIX errno
// (ENOENT, ENOTDIR, ENOTEMPTY, EEXIST, ENOSPC, EINVAL).
var (
	ErrNoSuchEntry     = errors.New("ramfs: no such entry")
	ErrNotADirectory   = errors.New("ramfs: not a directory")
	ErrNotEmpty        = errors.New("ramfs: directory not empty")
	ErrAlreadyExists   = errors.New("ramfs: already exists")
	ErrOutOfSpace      = errors.New("ramfs: out of space")
	ErrInvalidArgument = errors.New("ramfs: invalid argument")
)
