// Package transfer defines the seam between the catalog and the
// download/upload subsystems: interfaces a real downloader/uploader
// backend implements, and the bookkeeping that turns a completed transfer
// into a catalog entry plus a history row. The backends themselves are out
// of scope — callers here are the HTTP handlers invoked once an external
// transfer has already finished.
package transfer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bwan3150/resourcer/internal/catalog"
)

// Downloader fetches a remote URL to a local destination. A concrete
// implementation (platform-specific extractor, HTTP client, etc.) is out
// of scope; this interface is the seam a future backend plugs into.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// Uploader sends a local file to a named remote target. Out of scope for
// the same reason as Downloader.
type Uploader interface {
	Upload(ctx context.Context, localPath, targetFolder string) error
}

// Indexer is the subset of internal/indexer.Coordinator the recorder needs:
// post-hoc single-file indexing after a transfer completes.
type Indexer interface {
	IndexOne(ctx context.Context, path, sourceFolder string) error
}

// Recorder turns a completed download or upload into a catalog entry (via
// Indexer.IndexOne) and a history row. It holds no transfer logic itself.
type Recorder struct {
	store   *catalog.Store
	indexer Indexer
}

// NewRecorder returns a Recorder over store and indexer.
func NewRecorder(store *catalog.Store, indexer Indexer) *Recorder {
	return &Recorder{store: store, indexer: indexer}
}

// DownloadOutcome describes one finished (or failed) download task.
type DownloadOutcome struct {
	TaskID       string
	URL          string
	Platform     string
	Status       string // "completed" or "failed"
	FilePath     string // empty on failure
	SourceFolder string // required when Status == "completed"
	Err          string
}

// RecordDownload appends a download_history row and, on success, indexes
// the downloaded file so it appears in list_files without waiting for the
// next scan.
func (r *Recorder) RecordDownload(ctx context.Context, o DownloadOutcome) error {
	entry := &catalog.DownloadHistoryEntry{
		ID:        o.TaskID,
		URL:       o.URL,
		Platform:  o.Platform,
		Status:    o.Status,
		CreatedAt: time.Now().UTC(),
	}

	if o.FilePath != "" {
		entry.FilePath = &o.FilePath
		name := filepath.Base(o.FilePath)
		entry.FileName = &name
	}

	if o.Err != "" {
		entry.Error = &o.Err
	}

	if err := r.store.RecordDownload(ctx, entry); err != nil {
		return err
	}

	if o.Status != "completed" || o.FilePath == "" {
		return nil
	}

	if o.SourceFolder == "" {
		return fmt.Errorf("%w: RecordDownload requires source_folder for a completed transfer", catalog.ErrInvalidInput)
	}

	return r.indexer.IndexOne(ctx, o.FilePath, o.SourceFolder)
}

// UploadOutcome describes one finished (or failed) upload task.
type UploadOutcome struct {
	TaskID       string
	FileName     string
	TargetFolder string
	Status       string // "completed" or "failed"
	FileSize     int64
	FilePath     string // local path the file was uploaded from; required when Status == "completed"
	SourceFolder string // required when Status == "completed"
	Err          string
}

// RecordUpload appends an upload_history row and, on success, indexes the
// uploaded file so it appears in list_files without waiting for the
// target folder's next scan.
func (r *Recorder) RecordUpload(ctx context.Context, o UploadOutcome) error {
	entry := &catalog.UploadHistoryEntry{
		ID:           o.TaskID,
		FileName:     o.FileName,
		TargetFolder: o.TargetFolder,
		Status:       o.Status,
		FileSize:     o.FileSize,
		CreatedAt:    time.Now().UTC(),
	}

	if o.Err != "" {
		entry.Error = &o.Err
	}

	if err := r.store.RecordUpload(ctx, entry); err != nil {
		return err
	}

	if o.Status != "completed" || o.FilePath == "" {
		return nil
	}

	if o.SourceFolder == "" {
		return fmt.Errorf("%w: RecordUpload requires source_folder for a completed transfer", catalog.ErrInvalidInput)
	}

	return r.indexer.IndexOne(ctx, o.FilePath, o.SourceFolder)
}
