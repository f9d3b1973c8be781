package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := sampleFile("/lib/a.jpg")
	require.NoError(t, store.UpsertFile(ctx, f))

	tag, err := store.CreateTag(ctx, "/lib", "favorites", "#ff0000")
	require.NoError(t, err)

	require.NoError(t, store.AddFileTag(ctx, f.UUID, tag.ID))

	tags, err := store.ListFileTags(ctx, f.UUID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "favorites", tags[0].Name)

	require.NoError(t, store.RemoveFileTag(ctx, f.UUID, tag.ID))

	tags, err = store.ListFileTags(ctx, f.UUID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestDeleteTag_CascadesLinks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := sampleFile("/lib/a.jpg")
	require.NoError(t, store.UpsertFile(ctx, f))

	tag, err := store.CreateTag(ctx, "/lib", "favorites", "")
	require.NoError(t, err)
	require.NoError(t, store.AddFileTag(ctx, f.UUID, tag.ID))

	require.NoError(t, store.DeleteTag(ctx, tag.ID))

	tags, err := store.ListFileTags(ctx, f.UUID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestDeleteTag_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.DeleteTag(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
