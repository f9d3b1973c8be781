package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	sqlInsertTag = `INSERT INTO tags (source_folder, name, color, created_at) VALUES (?, ?, ?, ?)`

	sqlListTags = `SELECT id, source_folder, name, color, created_at
		FROM tags WHERE source_folder = ? ORDER BY name ASC`

	sqlDeleteTag = `DELETE FROM tags WHERE id = ?` // file_tags rows cascade via FK

	sqlAddFileTag = `INSERT OR IGNORE INTO file_tags (file_uuid, tag_id) VALUES (?, ?)`

	sqlRemoveFileTag = `DELETE FROM file_tags WHERE file_uuid = ? AND tag_id = ?`

	sqlListFileTags = `SELECT t.id, t.source_folder, t.name, t.color, t.created_at
		FROM tags t JOIN file_tags ft ON ft.tag_id = t.id
		WHERE ft.file_uuid = ? ORDER BY t.name ASC`
)

// CreateTag defines a new tag scoped to sourceFolder.
func (s *Store) CreateTag(ctx context.Context, sourceFolder, name, color string) (*Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tag name must not be empty", ErrInvalidInput)
	}

	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, sqlInsertTag, sourceFolder, name, color, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("catalog: creating tag %s/%s: %w", sourceFolder, name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("catalog: reading new tag id: %w", err)
	}

	return &Tag{ID: id, SourceFolder: sourceFolder, Name: name, Color: color, CreatedAt: now}, nil
}

// ListTags returns all tags defined for sourceFolder, alphabetically.
func (s *Store) ListTags(ctx context.Context, sourceFolder string) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx, sqlListTags, sourceFolder)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing tags for %s: %w", sourceFolder, err)
	}
	defer rows.Close()

	return scanTagRows(rows)
}

// DeleteTag removes a tag and, via the file_tags foreign key's ON DELETE
// CASCADE, every link to it.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, sqlDeleteTag, id)
	if err != nil {
		return fmt.Errorf("catalog: deleting tag %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog: checking delete-tag result: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: tag %d", ErrNotFound, id)
	}

	return nil
}

// AddFileTag links fileUUID to tagID. Idempotent.
func (s *Store) AddFileTag(ctx context.Context, fileUUID string, tagID int64) error {
	if _, err := s.db.ExecContext(ctx, sqlAddFileTag, fileUUID, tagID); err != nil {
		return fmt.Errorf("catalog: tagging file %s with %d: %w", fileUUID, tagID, err)
	}

	return nil
}

// RemoveFileTag removes the link between fileUUID and tagID, if present.
func (s *Store) RemoveFileTag(ctx context.Context, fileUUID string, tagID int64) error {
	if _, err := s.db.ExecContext(ctx, sqlRemoveFileTag, fileUUID, tagID); err != nil {
		return fmt.Errorf("catalog: untagging file %s from %d: %w", fileUUID, tagID, err)
	}

	return nil
}

// ListFileTags returns the tags attached to fileUUID.
func (s *Store) ListFileTags(ctx context.Context, fileUUID string) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx, sqlListFileTags, fileUUID)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing tags for file %s: %w", fileUUID, err)
	}
	defer rows.Close()

	return scanTagRows(rows)
}

func scanTagRows(rows *sql.Rows) ([]*Tag, error) {
	var out []*Tag

	for rows.Next() {
		var (
			t         Tag
			createdAt string
		)

		if err := rows.Scan(&t.ID, &t.SourceFolder, &t.Name, &t.Color, &createdAt); err != nil {
			return nil, fmt.Errorf("catalog: scanning tag row: %w", err)
		}

		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("catalog: parsing tag created_at: %w", err)
		}

		t.CreatedAt = parsed
		out = append(out, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
