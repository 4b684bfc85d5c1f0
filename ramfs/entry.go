package ramfs

// Entry is one name binding inside a directory's entry list: a bounded,
// non-empty name with no path separator, a non-owning reference to an
// inode, and a successor in the list. Directories own their entry
// records exclusively; the referenced inode is not owned by the entry
// (hard links and "." / ".." create multiple incoming edges onto the
// same inode).
type Entry struct {
	Name  string
	Inode *Inode
	next  *Entry
}

// validName reports whether name is usable as an entry name: non-empty,
// free of the path separator, and within MaxNameLength.
func validName(name string) bool {
	if name == "" || len(name) > MaxNameLength {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			return false
		}
	}
	return true
}

// appendEntry appends a new entry with the given name to the end of the
// list headed by *head and returns the new entry. The caller fills in
// Inode. Pre-existence is not checked here — callers that need
// uniqueness within a directory must check with findEntry first.
func appendEntry(head **Entry, name string) (*Entry, error) {
	if !validName(name) {
		return nil, ErrInvalidArgument
	}
	e := &Entry{Name: name}
	if *head == nil {
		*head = e
		return e, nil
	}
	cur := *head
	for cur.next != nil {
		cur = cur.next
	}
	cur.next = e
	return e, nil
}

// findEntry scans the list headed by *head for an exact byte-wise match
// on name and returns it, or nil if absent.
func findEntry(head *Entry, name string) *Entry {
	for e := head; e != nil; e = e.next {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// detachEntry removes the first entry whose name equals name, returning
// the inode it referenced. It fails with ErrNoSuchEntry if absent. The
// entry record itself is freed; the referenced inode is left untouched —
// callers are responsible for adjusting its link count.
func detachEntry(head **Entry, name string) (*Inode, error) {
	var prev *Entry
	for cur := *head; cur != nil; cur = cur.next {
		if cur.Name == name {
			if prev == nil {
				*head = cur.next
			} else {
				prev.next = cur.next
			}
			cur.next = nil
			return cur.Inode, nil
		}
		prev = cur
	}
	return nil, ErrNoSuchEntry
}

// entryNames returns the entry names of the list headed by head, in list
// order. Used by tests asserting invariant 1 and Scenario 2 of spec.md
// §8.
func entryNames(head *Entry) []string {
	var names []string
	for e := head; e != nil; e = e.next {
		names = append(names, e.Name)
	}
	return names
}

// entryCount returns the number of entries in the list headed by head.
func entryCount(head *Entry) int {
	n := 0
	for e := head; e != nil; e = e.next {
		n++
	}
	return n
}
