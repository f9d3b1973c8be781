package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubfolderOrder_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	order, err := store.GetSubfolderOrder(ctx, "/lib")
	require.NoError(t, err)
	assert.Empty(t, order)

	require.NoError(t, store.SetSubfolderOrder(ctx, "/lib", []string{"c", "a", "b"}))

	order, err = store.GetSubfolderOrder(ctx, "/lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestSubfolderOrder_Overwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetSubfolderOrder(ctx, "/lib", []string{"a"}))
	require.NoError(t, store.SetSubfolderOrder(ctx, "/lib", []string{"b", "a"}))

	order, err := store.GetSubfolderOrder(ctx, "/lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, order)
}
