package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// sqlUpsertFile reconciles a scanned file with the catalog, keyed by
	// current_path. On conflict, uuid/fingerprint/created_at/source_url are
	// preserved from the existing row rather than overwritten — a rescan of
	// an already-known file must never mint a new identity or lose the
	// fingerprint a prior move-scan computed. source_url is preserved via
	// COALESCE so a download-origin tag survives incidental rescans.
	sqlUpsertFile = `INSERT INTO file_index
		(uuid, fingerprint, current_path, folder_path, file_name, file_type,
		 extension, file_size, created_at, modified_at, indexed_at, source_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(current_path) DO UPDATE SET
		 folder_path = excluded.folder_path,
		 file_name = excluded.file_name,
		 file_type = excluded.file_type,
		 extension = excluded.extension,
		 file_size = excluded.file_size,
		 modified_at = excluded.modified_at,
		 indexed_at = excluded.indexed_at,
		 source_url = COALESCE(excluded.source_url, file_index.source_url)`

	sqlSelectFileColumns = `uuid, fingerprint, current_path, folder_path, file_name,
		file_type, extension, file_size, created_at, modified_at, indexed_at, source_url`

	sqlGetFileByPath = `SELECT ` + sqlSelectFileColumns + ` FROM file_index WHERE current_path = ?`

	sqlGetFileByUUID = `SELECT ` + sqlSelectFileColumns + ` FROM file_index WHERE uuid = ?`

	sqlFindOrphanByFingerprint = `SELECT ` + sqlSelectFileColumns + `
		FROM file_index WHERE fingerprint = ? AND current_path IS NULL LIMIT 1`

	sqlUpdateFilePath = `UPDATE file_index
		SET current_path = ?, folder_path = ?, file_name = ?
		WHERE uuid = ?`

	sqlMarkMissingSimple = `UPDATE file_index
		SET current_path = NULL
		WHERE folder_path = ? AND current_path IS NOT NULL AND current_path NOT IN (%s)`

	sqlClearFilesUnder = `UPDATE file_index SET current_path = NULL
		WHERE current_path IS NOT NULL AND (folder_path = ? OR folder_path LIKE ? ESCAPE '\')`
)

// markMissingChunkSize bounds how many still-existing paths are inlined
// directly into a NOT IN (...) list before switching to the temp-table
// strategy; spec §4.3 calls for avoiding huge NOT IN parameter lists.
const markMissingChunkSize = 400

// UpsertFile reconciles one scanned file with the catalog. If a row for
// f.CurrentPath already exists, its uuid and fingerprint are
// preserved (the caller should pass the existing values through); if not,
// the caller is responsible for having assigned a fresh UUID (or reattached
// an orphan's UUID via FindOrphanByFingerprint) before calling this.
func (s *Store) UpsertFile(ctx context.Context, f *FileEntry) error {
	if f.CurrentPath == nil {
		return fmt.Errorf("%w: UpsertFile requires a non-nil current_path", ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, sqlUpsertFile,
		f.UUID, f.Fingerprint, *f.CurrentPath, f.FolderPath, f.FileName, string(f.FileType),
		f.Extension, f.FileSize, formatTime(f.CreatedAt), formatTime(f.ModifiedAt), formatTime(f.IndexedAt), f.SourceURL)
	if err != nil {
		return fmt.Errorf("catalog: upserting file %s: %w", *f.CurrentPath, err)
	}

	return nil
}

// UpsertFileTx is UpsertFile against an open transaction, used by the
// scanner's batched recursive walk so an entire ~500-row batch commits
// atomically.
func (s *Store) UpsertFileTx(ctx context.Context, tx *sql.Tx, f *FileEntry) error {
	if f.CurrentPath == nil {
		return fmt.Errorf("%w: UpsertFile requires a non-nil current_path", ErrInvalidInput)
	}

	_, err := tx.ExecContext(ctx, sqlUpsertFile,
		f.UUID, f.Fingerprint, *f.CurrentPath, f.FolderPath, f.FileName, string(f.FileType),
		f.Extension, f.FileSize, formatTime(f.CreatedAt), formatTime(f.ModifiedAt), formatTime(f.IndexedAt), f.SourceURL)
	if err != nil {
		return fmt.Errorf("catalog: upserting file %s: %w", *f.CurrentPath, err)
	}

	return nil
}

// GetFileByPath returns the file currently located at path, or ErrNotFound.
func (s *Store) GetFileByPath(ctx context.Context, path string) (*FileEntry, error) {
	return s.scanFileRow(s.db.QueryRowContext(ctx, sqlGetFileByPath, path))
}

// GetFileByPathTx is GetFileByPath against an open transaction. The scanner
// must use this (not GetFileByPath) while it holds the store's sole
// connection via a transaction, or the read would block forever waiting
// for a second connection that SetMaxOpenConns(1) will never hand out.
func (s *Store) GetFileByPathTx(ctx context.Context, tx *sql.Tx, path string) (*FileEntry, error) {
	return s.scanFileRow(tx.QueryRowContext(ctx, sqlGetFileByPath, path))
}

// GetFileByUUID returns the file identified by id, or ErrNotFound.
func (s *Store) GetFileByUUID(ctx context.Context, id string) (*FileEntry, error) {
	return s.scanFileRow(s.db.QueryRowContext(ctx, sqlGetFileByUUID, id))
}

// FindOrphanByFingerprint looks up a missing (current_path IS NULL) file
// whose content fingerprint matches fp. Used by move detection: a newly
// seen file with no row at its path may be a file that moved from
// elsewhere in the library.
func (s *Store) FindOrphanByFingerprint(ctx context.Context, fp string) (*FileEntry, error) {
	return s.scanFileRow(s.db.QueryRowContext(ctx, sqlFindOrphanByFingerprint, fp))
}

// FindOrphanByFingerprintTx is FindOrphanByFingerprint against an open
// transaction, used by the recursive scanner's move detection.
func (s *Store) FindOrphanByFingerprintTx(ctx context.Context, tx *sql.Tx, fp string) (*FileEntry, error) {
	return s.scanFileRow(tx.QueryRowContext(ctx, sqlFindOrphanByFingerprint, fp))
}

// NewFileUUID generates a fresh stable identity for a file observed for
// the first time.
func NewFileUUID() string {
	return uuid.NewString()
}

// UpdateFilePath relocates a file's current_path/folder_path/file_name in
// place, preserving uuid, fingerprint, and created_at. Used by the
// rename/move hook: the index row is updated without a directory rescan.
func (s *Store) UpdateFilePath(ctx context.Context, id, newPath, newFolder, newName string) error {
	res, err := s.db.ExecContext(ctx, sqlUpdateFilePath, newPath, newFolder, newName, id)
	if err != nil {
		return fmt.Errorf("catalog: updating file path for %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog: checking update-path result: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: file %s", ErrNotFound, id)
	}

	return nil
}

// UpdateFilePathTx is UpdateFilePath against an open transaction, used by
// the recursive scanner to reattach a moved file in place without
// releasing the writer lock mid-batch.
func (s *Store) UpdateFilePathTx(ctx context.Context, tx *sql.Tx, id, newPath, newFolder, newName string) error {
	res, err := tx.ExecContext(ctx, sqlUpdateFilePath, newPath, newFolder, newName, id)
	if err != nil {
		return fmt.Errorf("catalog: updating file path for %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog: checking update-path result: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: file %s", ErrNotFound, id)
	}

	return nil
}

// MarkMissing sets current_path = NULL for every file in folderPath whose
// current_path is not in existingPaths (files no longer seen during the
// just-completed scan). When existingPaths is large, a temp table is used
// instead of an inline NOT IN list so parameter count stays bounded.
func (s *Store) MarkMissing(ctx context.Context, tx *sql.Tx, folderPath string, existingPaths []string) error {
	exec := s.execer(tx)

	if len(existingPaths) <= markMissingChunkSize {
		return markMissingInline(ctx, exec, folderPath, existingPaths)
	}

	return markMissingViaTempTable(ctx, exec, folderPath, existingPaths)
}

type execContexter interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(tx *sql.Tx) execContexter {
	if tx != nil {
		return tx
	}

	return s.db
}

func markMissingInline(ctx context.Context, exec execContexter, folderPath string, existingPaths []string) error {
	if len(existingPaths) == 0 {
		const sqlMarkAllMissing = `UPDATE file_index SET current_path = NULL
			WHERE folder_path = ? AND current_path IS NOT NULL`

		_, err := exec.ExecContext(ctx, sqlMarkAllMissing, folderPath)
		if err != nil {
			return fmt.Errorf("catalog: marking all files missing in %s: %w", folderPath, err)
		}

		return nil
	}

	placeholders := make([]byte, 0, len(existingPaths)*2)
	args := make([]any, 0, len(existingPaths)+1)
	args = append(args, folderPath)

	for i, p := range existingPaths {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}

		placeholders = append(placeholders, '?')
		args = append(args, p)
	}

	query := fmt.Sprintf(sqlMarkMissingSimple, string(placeholders))
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("catalog: marking missing files in %s: %w", folderPath, err)
	}

	return nil
}

// markMissingViaTempTable materializes existingPaths into a temp table in
// chunks and marks missing via a NOT EXISTS join, avoiding an unbounded
// NOT IN parameter list per spec §4.3 / §9.
func markMissingViaTempTable(ctx context.Context, exec execContexter, folderPath string, existingPaths []string) error {
	const createTemp = `CREATE TEMP TABLE IF NOT EXISTS _scan_existing_paths (path TEXT PRIMARY KEY)`
	if _, err := exec.ExecContext(ctx, createTemp); err != nil {
		return fmt.Errorf("catalog: creating temp scan-paths table: %w", err)
	}

	const truncateTemp = `DELETE FROM _scan_existing_paths`
	if _, err := exec.ExecContext(ctx, truncateTemp); err != nil {
		return fmt.Errorf("catalog: truncating temp scan-paths table: %w", err)
	}

	for start := 0; start < len(existingPaths); start += markMissingChunkSize {
		end := min(start+markMissingChunkSize, len(existingPaths))
		chunk := existingPaths[start:end]

		placeholders := make([]byte, 0, len(chunk)*2)
		args := make([]any, 0, len(chunk))

		for i, p := range chunk {
			if i > 0 {
				placeholders = append(placeholders, ',')
			}

			placeholders = append(placeholders, '(', '?', ')')
			args = append(args, p)
		}

		insert := fmt.Sprintf(`INSERT OR IGNORE INTO _scan_existing_paths (path) VALUES %s`, string(placeholders))
		if _, err := exec.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("catalog: populating temp scan-paths table: %w", err)
		}
	}

	const markMissing = `UPDATE file_index SET current_path = NULL
		WHERE folder_path = ? AND current_path IS NOT NULL
		AND NOT EXISTS (SELECT 1 FROM _scan_existing_paths WHERE path = file_index.current_path)`

	if _, err := exec.ExecContext(ctx, markMissing, folderPath); err != nil {
		return fmt.Errorf("catalog: marking missing files via temp table in %s: %w", folderPath, err)
	}

	if _, err := exec.ExecContext(ctx, truncateTemp); err != nil {
		return fmt.Errorf("catalog: truncating temp scan-paths table after use: %w", err)
	}

	return nil
}

// ClearFilesUnder sets current_path = NULL for every file whose
// folder_path is or descends from sourceRoot. Used by a forced full
// rebuild before the recursive scan repopulates the catalog from scratch.
func (s *Store) ClearFilesUnder(ctx context.Context, sourceRoot string) (int64, error) {
	likePattern := escapeLike(sourceRoot) + `/%`

	res, err := s.db.ExecContext(ctx, sqlClearFilesUnder, sourceRoot, likePattern)
	if err != nil {
		return 0, fmt.Errorf("catalog: clearing files under %s: %w", sourceRoot, err)
	}

	return res.RowsAffected()
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))

	for i := range len(s) {
		switch s[i] {
		case '\\', '%', '_':
			out = append(out, '\\', s[i])
		default:
			out = append(out, s[i])
		}
	}

	return string(out)
}

func (s *Store) scanFileRow(row rowScanner) (*FileEntry, error) {
	var (
		f                                    FileEntry
		currentPath, sourceURL               sql.NullString
		fileType                             string
		createdAt, modifiedAt, indexedAt     string
	)

	err := row.Scan(&f.UUID, &f.Fingerprint, &currentPath, &f.FolderPath, &f.FileName,
		&fileType, &f.Extension, &f.FileSize, &createdAt, &modifiedAt, &indexedAt, &sourceURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w", ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("catalog: scanning file row: %w", err)
	}

	f.FileType = FileType(fileType)

	if currentPath.Valid {
		p := currentPath.String
		f.CurrentPath = &p
	}

	if sourceURL.Valid {
		u := sourceURL.String
		f.SourceURL = &u
	}

	if f.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("catalog: parsing created_at: %w", err)
	}

	if f.ModifiedAt, err = time.Parse(time.RFC3339Nano, modifiedAt); err != nil {
		return nil, fmt.Errorf("catalog: parsing modified_at: %w", err)
	}

	if f.IndexedAt, err = time.Parse(time.RFC3339Nano, indexedAt); err != nil {
		return nil, fmt.Errorf("catalog: parsing indexed_at: %w", err)
	}

	return &f, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}

	return t.UTC().Format(time.RFC3339Nano)
}
