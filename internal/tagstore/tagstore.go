// Package tagstore manages user-defined tags and their attachment to
// files, a thin validating layer over catalog.Store's tag tables.
package tagstore

import (
	"context"
	"fmt"

	"github.com/bwan3150/resourcer/internal/catalog"
)

// Store manages tags scoped to source folders.
type Store struct {
	catalog *catalog.Store
}

// New returns a tagstore.Store over catalog.
func New(catalog *catalog.Store) *Store {
	return &Store{catalog: catalog}
}

// Create defines a new tag scoped to sourceFolder.
func (s *Store) Create(ctx context.Context, sourceFolder, name, color string) (*catalog.Tag, error) {
	return s.catalog.CreateTag(ctx, sourceFolder, name, color)
}

// List returns every tag defined for sourceFolder.
func (s *Store) List(ctx context.Context, sourceFolder string) ([]*catalog.Tag, error) {
	return s.catalog.ListTags(ctx, sourceFolder)
}

// Delete removes a tag and every file's link to it.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.catalog.DeleteTag(ctx, id)
}

// Attach links fileUUID to tagID, validating both operands are non-empty.
func (s *Store) Attach(ctx context.Context, fileUUID string, tagID int64) error {
	if fileUUID == "" {
		return fmt.Errorf("%w: file uuid must not be empty", catalog.ErrInvalidInput)
	}

	return s.catalog.AddFileTag(ctx, fileUUID, tagID)
}

// Detach removes the link between fileUUID and tagID, if present.
func (s *Store) Detach(ctx context.Context, fileUUID string, tagID int64) error {
	return s.catalog.RemoveFileTag(ctx, fileUUID, tagID)
}

// ForFile returns the tags attached to fileUUID.
func (s *Store) ForFile(ctx context.Context, fileUUID string) ([]*catalog.Tag, error) {
	return s.catalog.ListFileTags(ctx, fileUUID)
}
