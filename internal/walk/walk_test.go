package walk_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/drivesync/internal/walk"
)

// collect drains both channels and returns records keyed by relative path.
func collect(t *testing.T, root string) (map[string]walk.FileRecord, []error) {
	t.Helper()

	records, warns := walk.Walk(context.Background(), root)

	var errs []error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for err := range warns {
			errs = append(errs, err)
		}
	}()

	got := make(map[string]walk.FileRecord)
	for rec := range records {
		_, dup := got[rec.RelPath]
		require.False(t, dup, "path %s visited twice", rec.RelPath)
		got[rec.RelPath] = rec
	}
	<-done
	return got, errs
}

func TestWalk_VisitsEveryRegularFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(root, "root.txt"), []byte("root file"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "mid.txt"), []byte("middle"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "deep", "leaf.txt"), []byte("leaf!"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden", "dot.txt"), []byte("dot"), 0o600))

	got, errs := collect(t, root)

	assert.Empty(t, errs)
	assert.Len(t, got, 4)
	assert.Contains(t, got, "root.txt")
	assert.Contains(t, got, filepath.Join("sub", "mid.txt"))
	assert.Contains(t, got, filepath.Join("sub", "deep", "leaf.txt"))
	assert.Contains(t, got, filepath.Join(".hidden", "dot.txt"))

	leaf := got[filepath.Join("sub", "deep", "leaf.txt")]
	assert.Equal(t, int64(5), leaf.Size)
	assert.False(t, leaf.ModTime.IsZero())
	assert.True(t, leaf.Mode.IsRegular())
}

func TestWalk_Restartable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("b"), 0o644))

	first, _ := collect(t, root)
	second, _ := collect(t, root)
	assert.Equal(t, first, second)
}

func TestWalk_MissingRoot(t *testing.T) {
	got, errs := collect(t, filepath.Join(t.TempDir(), "nope"))
	assert.Empty(t, got)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)
}

func TestWalk_SymlinkToFileIncluded(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "target.txt"), []byte("target data"), 0o644))
	require.NoError(t, os.Symlink("target.txt", filepath.Join(root, "link.txt")))

	got, errs := collect(t, root)

	assert.Empty(t, errs)
	require.Contains(t, got, "link.txt")
	// The link surfaces with the metadata of the file it points at.
	assert.Equal(t, int64(11), got["link.txt"].Size)
}

func TestWalk_BrokenSymlinkWarns(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ok.txt"), []byte("ok"), 0o644))
	require.NoError(t, os.Symlink("missing", filepath.Join(root, "dangling")))

	got, errs := collect(t, root)

	// The broken link is excluded but never aborts the walk.
	assert.Len(t, got, 1)
	assert.Contains(t, got, "ok.txt")
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)
}

func TestWalk_SymlinkedDirNotFollowed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "real"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "real", "f.txt"), []byte("f"), 0o644))
	require.NoError(t, os.Symlink("real", filepath.Join(root, "alias")))

	got, errs := collect(t, root)

	assert.Empty(t, errs)
	assert.Len(t, got, 1)
	assert.Contains(t, got, filepath.Join("real", "f.txt"))
}

func TestWalk_CancelStopsEarly(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 100; i++ {
		name := filepath.Join(root, string(rune('a'+i%26))+string(rune('0'+i/26))+".txt")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}

	ctx, cancel := context.WithCancel(context.Background())
	records, warns := walk.Walk(ctx, root)
	go func() {
		//nolint:revive // empty-block: intentionally draining warning channel
		for range warns {
		}
	}()

	// Consume one record, then cancel; the channels must still close.
	<-records
	cancel()
	count := 0
	for range records {
		count++
	}
	assert.Less(t, count, 100)
}
