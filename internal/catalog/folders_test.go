package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertFolder_ExistenceMeansScanned(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.UpsertFolder(ctx, &FolderEntry{
		Path: "/lib", SourceFolder: "/lib", Name: "lib", Depth: 0, FileCount: 0, IndexedAt: now,
	}))

	indexed, err := store.IsFolderIndexed(ctx, "/lib")
	require.NoError(t, err)
	assert.True(t, indexed)

	indexed, err = store.IsFolderIndexed(ctx, "/lib/unseen")
	require.NoError(t, err)
	assert.False(t, indexed)
}

func TestListSubfolders_DirectChildrenOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	parent := "/lib"

	require.NoError(t, store.UpsertFolder(ctx, &FolderEntry{
		Path: "/lib/a", ParentPath: &parent, SourceFolder: "/lib", Name: "a", Depth: 1, IndexedAt: now,
	}))

	childOfA := "/lib/a"
	require.NoError(t, store.UpsertFolder(ctx, &FolderEntry{
		Path: "/lib/a/deep", ParentPath: &childOfA, SourceFolder: "/lib", Name: "deep", Depth: 2, IndexedAt: now,
	}))

	subs, err := store.ListSubfolders(ctx, "/lib")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "/lib/a", subs[0].Path)
}

func TestGetFolderIndexedAt_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetFolderIndexedAt(context.Background(), "/nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFolderFileCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.UpsertFolder(ctx, &FolderEntry{
		Path: "/lib", SourceFolder: "/lib", Name: "lib", Depth: 0, IndexedAt: now,
	}))

	require.NoError(t, store.UpdateFolderFileCount(ctx, nil, "/lib", 7, now.Add(time.Minute)))

	got, err := store.GetFolder(ctx, "/lib")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.FileCount)
}
