// Package query answers read requests against the catalog: paginated file
// listings, subfolder browsing, and breadcrumb construction.
package query

import (
	"context"

	"github.com/bwan3150/resourcer/internal/catalog"
)

// Engine wraps a catalog.Store with the read-side operations consumed by
// the HTTP layer. It holds no state of its own — every call is a direct
// store query or a store query merged with a live filesystem read.
type Engine struct {
	store *catalog.Store
}

// New returns a query Engine over store.
func New(store *catalog.Store) *Engine {
	return &Engine{store: store}
}

// ListFiles returns a page of files under folder. All queries exclude rows
// with current_path IS NULL, so moved-away files never appear.
func (e *Engine) ListFiles(ctx context.Context, folder string, offset, limit int, typeFilter catalog.FileType, sort catalog.SortOrder) (*catalog.FilePage, error) {
	return e.store.ListFilesPage(ctx, folder, offset, limit, typeFilter, sort)
}

// GetFileByUUID returns a single file by its stable identity.
func (e *Engine) GetFileByUUID(ctx context.Context, uuid string) (*catalog.FileEntry, error) {
	return e.store.GetFileByUUID(ctx, uuid)
}

// UpdateFilePath relocates a file's current_path in place, preserving
// identity. Used by the rename/move HTTP hook after a successful
// filesystem operation.
func (e *Engine) UpdateFilePath(ctx context.Context, uuid, newPath, newFolder, newName string) error {
	return e.store.UpdateFilePath(ctx, uuid, newPath, newFolder, newName)
}

// ClearFilesUnder marks every file under sourceRoot missing. Used ahead of
// a forced full rebuild.
func (e *Engine) ClearFilesUnder(ctx context.Context, sourceRoot string) (int64, error) {
	return e.store.ClearFilesUnder(ctx, sourceRoot)
}

// ResolveSourceFolder returns the registered source folder that is the
// longest-prefix ancestor of path.
func (e *Engine) ResolveSourceFolder(ctx context.Context, path string) (string, error) {
	return e.store.ResolveSourceFolder(ctx, path)
}
