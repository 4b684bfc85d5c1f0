package ramfs

import (
	"errors"
	"strings"
	"testing"
)

func TestAppendEntryOrdersByInsertion(t *testing.T) {
	var head *Entry
	for _, name := range []string{"a", "b", "c"} {
		if _, err := appendEntry(&head, name); err != nil {
			t.Fatalf("appendEntry(%s): %v", name, err)
		}
	}
	if got, want := entryNames(head), []string{"a", "b", "c"}; !sliceEqual(got, want) {
		t.Errorf("entryNames = %v, want %v", got, want)
	}
}

func TestAppendEntryRejectsInvalidNames(t *testing.T) {
	cases := []string{"", "a/b", strings.Repeat("x", MaxNameLength+1)}
	for _, name := range cases {
		var head *Entry
		if _, err := appendEntry(&head, name); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("appendEntry(%q) err = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestDetachEntryRemovesExactlyOne(t *testing.T) {
	var head *Entry
	appendEntry(&head, "a")
	appendEntry(&head, "b")
	appendEntry(&head, "c")

	n := &Inode{}
	findEntry(head, "b").Inode = n

	got, err := detachEntry(&head, "b")
	if err != nil {
		t.Fatalf("detachEntry(b): %v", err)
	}
	if got != n {
		t.Errorf("detachEntry returned %v, want %v", got, n)
	}
	if want := []string{"a", "c"}; !sliceEqual(entryNames(head), want) {
		t.Errorf("entryNames after detach = %v, want %v", entryNames(head), want)
	}
}

func TestDetachEntryMissing(t *testing.T) {
	var head *Entry
	appendEntry(&head, "a")

	if _, err := detachEntry(&head, "missing"); !errors.Is(err, ErrNoSuchEntry) {
		t.Errorf("detachEntry(missing) err = %v, want ErrNoSuchEntry", err)
	}
}
