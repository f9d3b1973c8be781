package catalog

import (
	"context"
	"fmt"
	"time"
)

const (
	sqlInsertDownloadHistory = `INSERT INTO download_history
		(id, url, platform, status, file_name, file_path, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 status = excluded.status,
		 file_name = excluded.file_name,
		 file_path = excluded.file_path,
		 error = excluded.error`

	sqlListDownloadHistory = `SELECT id, url, platform, status, file_name, file_path, error, created_at
		FROM download_history ORDER BY created_at DESC LIMIT ?`

	sqlInsertUploadHistory = `INSERT INTO upload_history
		(id, file_name, target_folder, status, file_size, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 status = excluded.status,
		 error = excluded.error`

	sqlListUploadHistory = `SELECT id, file_name, target_folder, status, file_size, error, created_at
		FROM upload_history ORDER BY created_at DESC LIMIT ?`
)

// RecordDownload upserts a download task outcome, keyed by task id, so a
// caller can record "started" then later update to "completed"/"failed".
func (s *Store) RecordDownload(ctx context.Context, e *DownloadHistoryEntry) error {
	now := e.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, sqlInsertDownloadHistory,
		e.ID, e.URL, e.Platform, e.Status, e.FileName, e.FilePath, e.Error, formatTime(now))
	if err != nil {
		return fmt.Errorf("catalog: recording download %s: %w", e.ID, err)
	}

	return nil
}

// ListDownloadHistory returns up to limit most recent download entries.
func (s *Store) ListDownloadHistory(ctx context.Context, limit int) ([]*DownloadHistoryEntry, error) {
	if limit <= 0 {
		limit = MaxPageLimit
	}

	rows, err := s.db.QueryContext(ctx, sqlListDownloadHistory, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing download history: %w", err)
	}
	defer rows.Close()

	var out []*DownloadHistoryEntry

	for rows.Next() {
		var (
			e         DownloadHistoryEntry
			createdAt string
		)

		if err := rows.Scan(&e.ID, &e.URL, &e.Platform, &e.Status, &e.FileName, &e.FilePath, &e.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("catalog: scanning download history row: %w", err)
		}

		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("catalog: parsing download history created_at: %w", err)
		}

		out = append(out, &e)
	}

	return out, rows.Err()
}

// RecordUpload upserts an upload task outcome, keyed by task id.
func (s *Store) RecordUpload(ctx context.Context, e *UploadHistoryEntry) error {
	now := e.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, sqlInsertUploadHistory,
		e.ID, e.FileName, e.TargetFolder, e.Status, e.FileSize, e.Error, formatTime(now))
	if err != nil {
		return fmt.Errorf("catalog: recording upload %s: %w", e.ID, err)
	}

	return nil
}

// ListUploadHistory returns up to limit most recent upload entries.
func (s *Store) ListUploadHistory(ctx context.Context, limit int) ([]*UploadHistoryEntry, error) {
	if limit <= 0 {
		limit = MaxPageLimit
	}

	rows, err := s.db.QueryContext(ctx, sqlListUploadHistory, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing upload history: %w", err)
	}
	defer rows.Close()

	var out []*UploadHistoryEntry

	for rows.Next() {
		var (
			e         UploadHistoryEntry
			createdAt string
		)

		if err := rows.Scan(&e.ID, &e.FileName, &e.TargetFolder, &e.Status, &e.FileSize, &e.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("catalog: scanning upload history row: %w", err)
		}

		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("catalog: parsing upload history created_at: %w", err)
		}

		out = append(out, &e)
	}

	return out, rows.Err()
}
