package ramfs

import "log/slog"

// Teardown releases the entire graph reachable from fs's root
// unconditionally, regardless of link counts or open files. It
// terminates despite the "." and ".." cycles by visiting each inode at
// most once: the teardown mark is set on first visit, and any later
// visit returns immediately. The root's self-"..' terminates at the
// first revisit.
//
// OpenCount is ignored — teardown is terminal. A diagnostic is logged
// for any file still open at teardown time, via the slog default
// logger, mirroring spec.md §4.7's "emit a diagnostic if any file is
// still open".
func (fs *Filesystem) Teardown() {
	if fs.Root == nil {
		return
	}
	teardownVisit(fs.Root)
	fs.Root = nil
}

func teardownVisit(n *Inode) {
	if n.teardownMark {
		return
	}
	n.teardownMark = true

	if n.IsDir() {
		for e := n.Entries; e != nil; {
			next := e.next
			teardownVisit(e.Inode)
			e.next = nil
			e.Inode = nil
			e = next
		}
		n.Entries = nil
	} else if n.OpenCount > 0 {
		slog.Warn("ramfs: teardown freeing file with open handles",
			slog.Uint64("open_count", uint64(n.OpenCount)))
	}

	n.Nlink = 0
	n.Data = nil
	n.Parent = nil
}
