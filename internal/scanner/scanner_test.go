package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwan3150/resourcer/internal/catalog"
)

func newTestScanner(t *testing.T) (*Scanner, *catalog.Store) {
	t.Helper()

	dbDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := catalog.Open(context.Background(), filepath.Join(dbDir, "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return New(store, logger), store
}

func writeLibFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	return path
}

func TestScanFolder_EmptySource(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	result, err := sc.ScanFolder(ctx, lib, lib, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ScannedFiles)
	assert.Equal(t, 1, result.ScannedFolders)

	page, err := store.ListFilesPage(ctx, lib, 0, 50, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Files)

	folder, err := store.GetFolder(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, int64(0), folder.FileCount)
}

func TestScanFolder_FirstVisitClassification(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	writeLibFile(t, lib, "a.jpg", []byte("x"))
	writeLibFile(t, lib, "b.mp4", []byte("x"))
	writeLibFile(t, lib, "c.xyz", []byte("x"))

	result, err := sc.ScanFolder(ctx, lib, lib, false)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ScannedFiles)

	page, err := store.ListFilesPage(ctx, lib, 0, 50, "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	types := map[string]catalog.FileType{}
	for _, f := range page.Files {
		types[f.FileName] = f.FileType
	}

	assert.Equal(t, catalog.FileTypeImage, types["a.jpg"])
	assert.Equal(t, catalog.FileTypeVideo, types["b.mp4"])
	assert.Equal(t, catalog.FileTypeOther, types["c.xyz"])

	imgPage, err := store.ListFilesPage(ctx, lib, 0, 50, catalog.FileTypeImage, "")
	require.NoError(t, err)
	require.Len(t, imgPage.Files, 1)
	assert.Equal(t, "a.jpg", imgPage.Files[0].FileName)

	// Fast scans never invoke the fingerprinter.
	assert.Empty(t, page.Files[0].Fingerprint)
}

func TestScanFolder_Idempotent(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	writeLibFile(t, lib, "a.jpg", []byte("content"))

	_, err := sc.ScanFolder(ctx, lib, lib, false)
	require.NoError(t, err)

	before, err := store.GetFileByPath(ctx, filepath.Join(lib, "a.jpg"))
	require.NoError(t, err)

	_, err = sc.ScanFolder(ctx, lib, lib, false)
	require.NoError(t, err)

	after, err := store.GetFileByPath(ctx, filepath.Join(lib, "a.jpg"))
	require.NoError(t, err)

	assert.Equal(t, before.UUID, after.UUID)
	assert.True(t, before.ModifiedAt.Equal(after.ModifiedAt))
	assert.True(t, before.IndexedAt.Equal(after.IndexedAt), "unchanged mtime must skip the upsert entirely, not just preserve UUID")
}

func TestScanFolder_MarkMissing(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	writeLibFile(t, lib, "a.jpg", []byte("x"))

	_, err := sc.ScanFolder(ctx, lib, lib, false)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(lib, "a.jpg")))

	_, err = sc.ScanFolder(ctx, lib, lib, false)
	require.NoError(t, err)

	page, err := store.ListFilesPage(ctx, lib, 0, 50, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total, "deleted file must no longer appear in list_files")
}

func TestScanFolder_SkipMarkMissingLeavesFileIntact(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	writeLibFile(t, lib, "a.jpg", []byte("x"))

	_, err := sc.ScanFolder(ctx, lib, lib, false)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(lib, "a.jpg")))

	_, err = sc.ScanFolder(ctx, lib, lib, true)
	require.NoError(t, err)

	page, err := store.ListFilesPage(ctx, lib, 0, 50, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total, "skip_mark_missing must leave the row untouched even though the file is gone")
}

func TestScanFolder_HiddenAndIgnoredDirectoriesPruned(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	require.NoError(t, os.Mkdir(filepath.Join(lib, ".git"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(lib, "node_modules"), 0o755))
	writeLibFile(t, filepath.Join(lib, ".git"), "config", []byte("x"))
	writeLibFile(t, lib, "a.jpg", []byte("x"))

	require.NoError(t, store.SetIgnoredFolders(ctx, []string{"node_modules"}))

	result, err := sc.ScanSource(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ScannedFiles)

	_, err = store.GetFolder(ctx, filepath.Join(lib, ".git"))
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = store.GetFolder(ctx, filepath.Join(lib, "node_modules"))
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestScanSource_ComputesFingerprintsForNewFiles(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	writeLibFile(t, lib, "a.jpg", []byte("content"))

	_, err := sc.ScanSource(ctx, lib)
	require.NoError(t, err)

	f, err := store.GetFileByPath(ctx, filepath.Join(lib, "a.jpg"))
	require.NoError(t, err)
	assert.NotEmpty(t, f.Fingerprint, "a recursive scan must compute fingerprints for newly seen files")
}

func TestScanSource_MoveReattachment(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	original := writeLibFile(t, lib, "b.mp4", []byte("video-bytes"))

	_, err := sc.ScanSource(ctx, lib)
	require.NoError(t, err)

	before, err := store.GetFileByPath(ctx, original)
	require.NoError(t, err)
	require.NotEmpty(t, before.Fingerprint)

	sub := filepath.Join(lib, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	moved := filepath.Join(sub, "b.mp4")
	require.NoError(t, os.Rename(original, moved))

	_, err = sc.ScanSource(ctx, lib)
	require.NoError(t, err)

	got, err := store.GetFileByPath(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, before.UUID, got.UUID, "moved file must reattach to its original UUID")

	_, err = store.GetFileByPath(ctx, original)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestScanSource_BatchesAcrossManyFiles(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	const n = recursiveBatchSize + 37

	for i := range n {
		writeLibFile(t, lib, "f"+itoaTest(i)+".jpg", []byte("x"))
	}

	result, err := sc.ScanSource(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, n, result.ScannedFiles)

	page, err := store.ListFilesPage(ctx, lib, 0, catalog.MaxPageLimit, "", "")
	require.NoError(t, err)
	assert.Equal(t, n, page.Total)
}

func TestNeedsRescan(t *testing.T) {
	sc, _ := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	needs, err := sc.NeedsRescan(ctx, lib)
	require.NoError(t, err)
	assert.True(t, needs, "a folder with no FolderEntry row has never been scanned")

	_, err = sc.ScanFolder(ctx, lib, lib, false)
	require.NoError(t, err)

	needs, err = sc.NeedsRescan(ctx, lib)
	require.NoError(t, err)
	assert.False(t, needs)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(lib, future, future))

	needs, err = sc.NeedsRescan(ctx, lib)
	require.NoError(t, err)
	assert.True(t, needs, "folder mtime advancing past indexed_at means stale")
}

func TestIndexSingle_NewFileCreatesFolderEntry(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	path := writeLibFile(t, lib, "uploaded.png", []byte("png-bytes"))

	require.NoError(t, sc.IndexSingle(ctx, path, lib))

	got, err := store.GetFileByPath(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "uploaded.png", got.FileName)
	assert.NotEmpty(t, got.UUID)

	folder, err := store.GetFolder(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, lib, folder.Path)
}

func TestIndexSingle_DoesNotClobberExistingFolderFileCount(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	writeLibFile(t, lib, "a.jpg", []byte("a"))
	writeLibFile(t, lib, "b.jpg", []byte("b"))

	_, err := sc.ScanFolder(ctx, lib, lib, false)
	require.NoError(t, err)

	path := writeLibFile(t, lib, "c.jpg", []byte("c"))
	require.NoError(t, sc.IndexSingle(ctx, path, lib))

	folder, err := store.GetFolder(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, int64(2), folder.FileCount, "IndexSingle must not overwrite a folder's existing file count")
}

func TestIndexSingle_ReattachesMovedFileByFingerprint(t *testing.T) {
	sc, store := newTestScanner(t)
	lib := t.TempDir()
	ctx := context.Background()

	original := writeLibFile(t, lib, "clip.mp4", []byte("video-bytes"))

	_, err := sc.ScanSource(ctx, lib)
	require.NoError(t, err)

	before, err := store.GetFileByPath(ctx, original)
	require.NoError(t, err)

	sub := filepath.Join(lib, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	moved := filepath.Join(sub, "clip.mp4")
	require.NoError(t, os.Rename(original, moved))

	// Mark the original row missing so it becomes an orphan candidate —
	// IndexSingle only reattaches against rows with current_path IS NULL.
	_, err = sc.ScanFolder(ctx, lib, lib, false)
	require.NoError(t, err)

	require.NoError(t, sc.IndexSingle(ctx, moved, lib))

	got, err := store.GetFileByPath(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, before.UUID, got.UUID, "IndexSingle is an explicit indexing path and must still reattach by fingerprint")
}

func itoaTest(i int) string {
	if i == 0 {
		return "0"
	}

	var buf [20]byte

	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	return string(buf[pos:])
}
