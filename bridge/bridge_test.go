package bridge

import (
	"context"
	"syscall"
	"testing"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/artemgoldenberg/ramfs-go/ramfs"
)

// newRootNode builds a root *Node and wires it into a NodeFS exactly as
// fs.Mount would before any OS mount happens, via fs.NewNodeFS directly —
// no OS mount required (fs/mount.go's own Mount is a thin wrapper around
// the same call). Without this, the embedded fs.Inode's bridge is never
// set, and every NewInode call the tests exercise through n.child
// (bridge/node.go's child) would operate on an unmounted tree.
func newRootNode() (*Node, *ramfs.Filesystem) {
	fsys := ramfs.NewFilesystem()
	root := &Node{fsys: fsys, data: fsys.Root}
	fs.NewNodeFS(root, &fs.Options{})
	return root, fsys
}

func TestMkdirThenLookup(t *testing.T) {
	root, _ := newRootNode()
	ctx := context.Background()

	var entryOut fuse.EntryOut
	if _, errno := root.Mkdir(ctx, "a", 0755, &entryOut); errno != 0 {
		t.Fatalf("Mkdir(a) errno = %v", errno)
	}
	if got, want := entryOut.Attr.Mode&syscall.S_IFDIR, uint32(syscall.S_IFDIR); got != want {
		t.Errorf("Mkdir entryOut mode = %o, want S_IFDIR bit set", got)
	}

	var lookupOut fuse.EntryOut
	if _, errno := root.Lookup(ctx, "a", &lookupOut); errno != 0 {
		t.Fatalf("Lookup(a) errno = %v", errno)
	}

	if _, errno := root.Lookup(ctx, "missing", &lookupOut); errno != syscall.ENOENT {
		t.Errorf("Lookup(missing) errno = %v, want ENOENT", errno)
	}
}

func TestCreateWriteReadRoundTrip(t *testing.T) {
	root, _ := newRootNode()
	ctx := context.Background()

	var out fuse.EntryOut
	_, fh, _, errno := root.Create(ctx, "f", 0, 0644, &out)
	if errno != 0 {
		t.Fatalf("Create(f) errno = %v", errno)
	}

	payload := []byte("hello ramfs")
	n, errno := root.Write(ctx, fh, payload, 0)
	if errno != 0 {
		t.Fatalf("Write errno = %v", errno)
	}
	if int(n) != len(payload) {
		t.Fatalf("Write returned %d, want %d", n, len(payload))
	}

	buf := make([]byte, len(payload))
	res, errno := root.Read(ctx, fh, buf, 0)
	if errno != 0 {
		t.Fatalf("Read errno = %v", errno)
	}
	got, status := res.Bytes(buf)
	if status != fuse.OK {
		t.Fatalf("ReadResult.Bytes status = %v", status)
	}
	if string(got) != string(payload) {
		t.Errorf("round-tripped data = %q, want %q", got, payload)
	}

	if errno := root.Release(ctx, fh); errno != 0 {
		t.Fatalf("Release errno = %v", errno)
	}
}

func TestUnlinkWhileOpenKeepsDataUntilRelease(t *testing.T) {
	root, fsys := newRootNode()
	ctx := context.Background()

	var out fuse.EntryOut
	_, fh, _, errno := root.Create(ctx, "f", 0, 0644, &out)
	if errno != 0 {
		t.Fatalf("Create(f) errno = %v", errno)
	}
	handle := fh.(*Handle)

	if _, errno := root.Write(ctx, fh, []byte("data"), 0); errno != 0 {
		t.Fatalf("Write errno = %v", errno)
	}

	if errno := root.Unlink(ctx, "f"); errno != 0 {
		t.Fatalf("Unlink(f) errno = %v", errno)
	}
	if handle.data.Data == nil {
		t.Fatalf("data freed before Release, open handle still live")
	}

	if errno := root.Release(ctx, fh); errno != 0 {
		t.Fatalf("Release errno = %v", errno)
	}
	if handle.data.OpenCount != 0 {
		t.Errorf("OpenCount after Release = %d, want 0", handle.data.OpenCount)
	}

	_ = fsys
}

func TestRmdirRejectsNonEmpty(t *testing.T) {
	root, _ := newRootNode()
	ctx := context.Background()

	var dirOut fuse.EntryOut
	if _, errno := root.Mkdir(ctx, "a", 0755, &dirOut); errno != 0 {
		t.Fatalf("Mkdir(a) errno = %v", errno)
	}
	child := root.child(ctx, mustLookupChild(t, root, "a"))
	childNode := child.Operations().(*Node)

	var fileOut fuse.EntryOut
	if _, _, _, errno := childNode.Create(ctx, "b", 0, 0644, &fileOut); errno != 0 {
		t.Fatalf("Create(a/b) errno = %v", errno)
	}

	if errno := root.Rmdir(ctx, "a"); errno != syscall.ENOTEMPTY {
		t.Fatalf("Rmdir(a) errno = %v, want ENOTEMPTY", errno)
	}
	if errno := childNode.Unlink(ctx, "b"); errno != 0 {
		t.Fatalf("Unlink(a/b) errno = %v", errno)
	}
	if errno := root.Rmdir(ctx, "a"); errno != 0 {
		t.Fatalf("Rmdir(a) after empty errno = %v", errno)
	}
}

func TestSetattrTruncate(t *testing.T) {
	root, _ := newRootNode()
	ctx := context.Background()

	var out fuse.EntryOut
	_, fh, _, errno := root.Create(ctx, "f", 0, 0644, &out)
	if errno != 0 {
		t.Fatalf("Create(f) errno = %v", errno)
	}
	if _, errno := root.Write(ctx, fh, []byte("0123456789"), 0); errno != 0 {
		t.Fatalf("Write errno = %v", errno)
	}

	var setOut fuse.AttrOut
	in := &fuse.SetAttrIn{}
	in.Valid = fuse.FATTR_SIZE
	in.Size = 4
	if errno := root.Setattr(ctx, fh, in, &setOut); errno != 0 {
		t.Fatalf("Setattr errno = %v", errno)
	}
	if setOut.Attr.Size != 4 {
		t.Errorf("Setattr out.Size = %d, want 4", setOut.Attr.Size)
	}
}

func TestRenameAcrossDirectories(t *testing.T) {
	root, _ := newRootNode()
	ctx := context.Background()

	var aOut, bOut fuse.EntryOut
	if _, errno := root.Mkdir(ctx, "a", 0755, &aOut); errno != 0 {
		t.Fatalf("Mkdir(a) errno = %v", errno)
	}
	if _, errno := root.Mkdir(ctx, "b", 0755, &bOut); errno != 0 {
		t.Fatalf("Mkdir(b) errno = %v", errno)
	}

	aChild := root.child(ctx, mustLookupChild(t, root, "a")).Operations().(*Node)
	bChild := root.child(ctx, mustLookupChild(t, root, "b")).Operations().(*Node)

	var fileOut fuse.EntryOut
	if _, _, _, errno := aChild.Create(ctx, "x", 0, 0644, &fileOut); errno != 0 {
		t.Fatalf("Create(a/x) errno = %v", errno)
	}

	if errno := aChild.Rename(ctx, "x", bChild, "y", 0); errno != 0 {
		t.Fatalf("Rename errno = %v", errno)
	}

	if _, errno := aChild.Lookup(ctx, "x", &fileOut); errno != syscall.ENOENT {
		t.Errorf("Lookup(a/x) after rename errno = %v, want ENOENT", errno)
	}
	if _, errno := bChild.Lookup(ctx, "y", &fileOut); errno != 0 {
		t.Errorf("Lookup(b/y) after rename errno = %v, want 0", errno)
	}
}

func mustLookupChild(t *testing.T, n *Node, name string) *ramfs.Inode {
	t.Helper()
	data, err := ramfs.LookupChild(n.data, name)
	if err != nil {
		t.Fatalf("LookupChild(%s): %v", name, err)
	}
	return data
}
