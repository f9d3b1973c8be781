package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFile(path string) *FileEntry {
	now := time.Now().UTC().Truncate(time.Second)

	name := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			name = path[i+1:]
			break
		}
	}

	return &FileEntry{
		UUID:        NewFileUUID(),
		Fingerprint: "",
		CurrentPath: &path,
		FolderPath:  "/lib",
		FileName:    name,
		FileType:    FileTypeImage,
		Extension:   "jpg",
		FileSize:    1024,
		CreatedAt:   now,
		ModifiedAt:  now,
		IndexedAt:   now,
	}
}

func TestUpsertFile_InsertThenGetByPath(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := sampleFile("/lib/a.jpg")
	require.NoError(t, store.UpsertFile(ctx, f))

	got, err := store.GetFileByPath(ctx, "/lib/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, f.UUID, got.UUID)
	assert.Equal(t, FileTypeImage, got.FileType)
}

func TestUpsertFile_PreservesUUIDAndFingerprintOnRescan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := sampleFile("/lib/a.jpg")
	f.Fingerprint = "abc123"
	require.NoError(t, store.UpsertFile(ctx, f))

	rescan := sampleFile("/lib/a.jpg")
	rescan.UUID = f.UUID // caller reuses the known uuid, as the scanner does
	rescan.Fingerprint = f.Fingerprint
	rescan.FileSize = 2048
	require.NoError(t, store.UpsertFile(ctx, rescan))

	got, err := store.GetFileByPath(ctx, "/lib/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, f.UUID, got.UUID)
	assert.Equal(t, "abc123", got.Fingerprint)
	assert.Equal(t, int64(2048), got.FileSize)
}

func TestUpsertFile_PreservesSourceURLViaCoalesce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	url := "https://example.com/origin"
	f := sampleFile("/lib/a.jpg")
	f.SourceURL = &url
	require.NoError(t, store.UpsertFile(ctx, f))

	rescan := sampleFile("/lib/a.jpg")
	rescan.UUID = f.UUID
	rescan.SourceURL = nil
	require.NoError(t, store.UpsertFile(ctx, rescan))

	got, err := store.GetFileByPath(ctx, "/lib/a.jpg")
	require.NoError(t, err)
	require.NotNil(t, got.SourceURL)
	assert.Equal(t, url, *got.SourceURL)
}

func TestGetFileByUUID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetFileByUUID(context.Background(), "missing-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindOrphanByFingerprint_OnlyMatchesMissingFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := sampleFile("/lib/a.jpg")
	f.Fingerprint = "fp1"
	require.NoError(t, store.UpsertFile(ctx, f))

	// Present file with matching fingerprint must not be returned as an orphan.
	_, err := store.FindOrphanByFingerprint(ctx, "fp1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.MarkMissing(ctx, nil, "/lib", nil))

	orphan, err := store.FindOrphanByFingerprint(ctx, "fp1")
	require.NoError(t, err)
	assert.Equal(t, f.UUID, orphan.UUID)
}

func TestUpdateFilePath_PreservesIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := sampleFile("/lib/a.jpg")
	f.Fingerprint = "fp1"
	require.NoError(t, store.UpsertFile(ctx, f))

	require.NoError(t, store.UpdateFilePath(ctx, f.UUID, "/lib/renamed.jpg", "/lib", "renamed.jpg"))

	got, err := store.GetFileByUUID(ctx, f.UUID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentPath)
	assert.Equal(t, "/lib/renamed.jpg", *got.CurrentPath)
	assert.Equal(t, "renamed.jpg", got.FileName)
	assert.Equal(t, "fp1", got.Fingerprint)
	assert.Equal(t, f.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestUpdateFilePath_UnknownUUID(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateFilePath(context.Background(), "nope", "/x", "/", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkMissing_OnlyUnlistedPathsCleared(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := sampleFile("/lib/a.jpg")
	b := sampleFile("/lib/b.jpg")
	require.NoError(t, store.UpsertFile(ctx, a))
	require.NoError(t, store.UpsertFile(ctx, b))

	require.NoError(t, store.MarkMissing(ctx, nil, "/lib", []string{"/lib/a.jpg"}))

	gotA, err := store.GetFileByPath(ctx, "/lib/a.jpg")
	require.NoError(t, err)
	assert.NotNil(t, gotA.CurrentPath)

	gotB, err := store.GetFileByUUID(ctx, b.UUID)
	require.NoError(t, err)
	assert.Nil(t, gotB.CurrentPath)
}

func TestMarkMissing_SkipWhenRequested(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := sampleFile("/lib/a.jpg")
	require.NoError(t, store.UpsertFile(ctx, a))

	// Caller decides not to call MarkMissing at all (skip_mark_missing=true
	// semantics) — the row must remain present.
	gotA, err := store.GetFileByUUID(ctx, a.UUID)
	require.NoError(t, err)
	assert.NotNil(t, gotA.CurrentPath)
}

func TestMarkMissing_LargeExistingSetUsesTempTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	paths := make([]string, 0, markMissingChunkSize+50)

	for i := range markMissingChunkSize + 50 {
		p := sampleFile("/lib/f" + itoa(i) + ".jpg")
		require.NoError(t, store.UpsertFile(ctx, p))
		paths = append(paths, *p.CurrentPath)
	}

	extra := sampleFile("/lib/extra.jpg")
	require.NoError(t, store.UpsertFile(ctx, extra))

	require.NoError(t, store.MarkMissing(ctx, nil, "/lib", paths))

	gotExtra, err := store.GetFileByUUID(ctx, extra.UUID)
	require.NoError(t, err)
	assert.Nil(t, gotExtra.CurrentPath)

	gotFirst, err := store.GetFileByPath(ctx, paths[0])
	require.NoError(t, err)
	assert.NotNil(t, gotFirst.CurrentPath)
}

func TestClearFilesUnder_ClearsDescendants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	top := sampleFile("/lib/a.jpg")
	top.FolderPath = "/lib"
	require.NoError(t, store.UpsertFile(ctx, top))

	nested := sampleFile("/lib/sub/b.jpg")
	nested.FolderPath = "/lib/sub"
	require.NoError(t, store.UpsertFile(ctx, nested))

	outside := sampleFile("/other/c.jpg")
	outside.FolderPath = "/other"
	require.NoError(t, store.UpsertFile(ctx, outside))

	n, err := store.ClearFilesUnder(ctx, "/lib")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	gotOutside, err := store.GetFileByUUID(ctx, outside.UUID)
	require.NoError(t, err)
	assert.NotNil(t, gotOutside.CurrentPath)
}

func itoa(i int) string {
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
