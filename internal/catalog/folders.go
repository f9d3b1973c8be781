package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	sqlUpsertFolder = `INSERT INTO folder_index
		(path, parent_path, source_folder, name, depth, file_count, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
		 parent_path = excluded.parent_path,
		 source_folder = excluded.source_folder,
		 name = excluded.name,
		 depth = excluded.depth,
		 file_count = excluded.file_count,
		 indexed_at = excluded.indexed_at`

	sqlSelectFolderColumns = `path, parent_path, source_folder, name, depth, file_count, indexed_at`

	sqlGetFolder = `SELECT ` + sqlSelectFolderColumns + ` FROM folder_index WHERE path = ?`

	sqlListSubfolders = `SELECT ` + sqlSelectFolderColumns + ` FROM folder_index WHERE parent_path = ?`

	sqlGetFolderIndexedAt = `SELECT indexed_at FROM folder_index WHERE path = ?`

	sqlUpdateFolderFileCount = `UPDATE folder_index SET file_count = ?, indexed_at = ? WHERE path = ?`
)

// UpsertFolder records that folder has been scanned, updating its file
// count and indexed_at. A FolderEntry row's mere existence means the
// directory has been visited at least once, even if empty.
func (s *Store) UpsertFolder(ctx context.Context, f *FolderEntry) error {
	_, err := s.db.ExecContext(ctx, sqlUpsertFolder,
		f.Path, f.ParentPath, f.SourceFolder, f.Name, f.Depth, f.FileCount, formatTime(f.IndexedAt))
	if err != nil {
		return fmt.Errorf("catalog: upserting folder %s: %w", f.Path, err)
	}

	return nil
}

// UpsertFolderTx is UpsertFolder against an open transaction.
func (s *Store) UpsertFolderTx(ctx context.Context, tx *sql.Tx, f *FolderEntry) error {
	_, err := tx.ExecContext(ctx, sqlUpsertFolder,
		f.Path, f.ParentPath, f.SourceFolder, f.Name, f.Depth, f.FileCount, formatTime(f.IndexedAt))
	if err != nil {
		return fmt.Errorf("catalog: upserting folder %s: %w", f.Path, err)
	}

	return nil
}

// GetFolder returns the FolderEntry for path, or ErrNotFound.
func (s *Store) GetFolder(ctx context.Context, path string) (*FolderEntry, error) {
	return scanFolderRow(s.db.QueryRowContext(ctx, sqlGetFolder, path))
}

// GetFolderTx is GetFolder against an open transaction. Required wherever a
// folder lookup happens inside a transaction already holding the store's
// sole writer connection — querying through s.db there would deadlock.
func (s *Store) GetFolderTx(ctx context.Context, tx *sql.Tx, path string) (*FolderEntry, error) {
	return scanFolderRow(tx.QueryRowContext(ctx, sqlGetFolder, path))
}

// ListSubfolders returns the indexed direct children of parent.
func (s *Store) ListSubfolders(ctx context.Context, parent string) ([]*FolderEntry, error) {
	rows, err := s.db.QueryContext(ctx, sqlListSubfolders, parent)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing subfolders of %s: %w", parent, err)
	}
	defer rows.Close()

	var out []*FolderEntry

	for rows.Next() {
		f, err := scanFolderRow(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, f)
	}

	return out, rows.Err()
}

// IsFolderIndexed reports whether folder has a FolderEntry row at all.
func (s *Store) IsFolderIndexed(ctx context.Context, folder string) (bool, error) {
	_, err := s.GetFolderIndexedAt(ctx, folder)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// GetFolderIndexedAt returns the indexed_at timestamp for folder, or
// ErrNotFound if it has never been scanned.
func (s *Store) GetFolderIndexedAt(ctx context.Context, folder string) (time.Time, error) {
	var indexedAt string

	err := s.db.QueryRowContext(ctx, sqlGetFolderIndexedAt, folder).Scan(&indexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: folder %s", ErrNotFound, folder)
	}

	if err != nil {
		return time.Time{}, fmt.Errorf("catalog: fetching folder indexed_at: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, indexedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("catalog: parsing folder indexed_at: %w", err)
	}

	return t, nil
}

// UpdateFolderFileCount sets folder's file_count and refreshes indexed_at,
// used after a recursive scan finishes counting files per folder.
func (s *Store) UpdateFolderFileCount(ctx context.Context, tx *sql.Tx, folder string, count int64, indexedAt time.Time) error {
	exec := s.execer(tx)

	if _, err := exec.ExecContext(ctx, sqlUpdateFolderFileCount, count, formatTime(indexedAt), folder); err != nil {
		return fmt.Errorf("catalog: updating file count for %s: %w", folder, err)
	}

	return nil
}

func scanFolderRow(row rowScanner) (*FolderEntry, error) {
	var (
		f          FolderEntry
		parentPath sql.NullString
		indexedAt  string
	)

	err := row.Scan(&f.Path, &parentPath, &f.SourceFolder, &f.Name, &f.Depth, &f.FileCount, &indexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w", ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("catalog: scanning folder row: %w", err)
	}

	if parentPath.Valid {
		p := parentPath.String
		f.ParentPath = &p
	}

	if f.IndexedAt, err = time.Parse(time.RFC3339Nano, indexedAt); err != nil {
		return nil, fmt.Errorf("catalog: parsing folder indexed_at: %w", err)
	}

	return &f, nil
}
