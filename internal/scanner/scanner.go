// Package scanner reconciles directory subtrees on disk with the catalog.
package scanner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/bwan3150/resourcer/internal/catalog"
	"github.com/bwan3150/resourcer/internal/classify"
	"github.com/bwan3150/resourcer/internal/fingerprint"
)

// recursiveBatchSize bounds how many file writes a recursive scan performs
// per transaction, so the writer lock is released periodically during a
// large walk instead of being held for the whole source folder.
const recursiveBatchSize = 500

// Result reports the work a scan performed.
type Result struct {
	ScannedFiles   int
	ScannedFolders int
}

// Scanner reconciles a directory subtree in the filesystem with the catalog.
type Scanner struct {
	store  *catalog.Store
	logger *slog.Logger
}

// New returns a Scanner over store.
func New(store *catalog.Store, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	return &Scanner{store: store, logger: logger}
}

// NeedsRescan reports whether folder has never been scanned, or has changed
// on disk since its last scan.
func (s *Scanner) NeedsRescan(ctx context.Context, folder string) (bool, error) {
	indexedAt, err := s.store.GetFolderIndexedAt(ctx, folder)
	if errors.Is(err, catalog.ErrNotFound) {
		return true, nil
	}

	if err != nil {
		return false, err
	}

	info, err := os.Stat(folder)
	if err != nil {
		return false, fmt.Errorf("%w: stating %s: %v", catalog.ErrIO, folder, err)
	}

	return info.ModTime().UTC().After(indexedAt), nil
}

// ScanFolder reconciles a single directory's direct file children with the
// catalog. It never recurses and never performs move detection: new files
// are assigned a fresh UUID with an empty fingerprint, keeping the cost of
// a first visit linear in the folder's size. Unless skipMarkMissing is
// true, files previously indexed under folder but no longer present on
// disk are marked missing.
func (s *Scanner) ScanFolder(ctx context.Context, folder, sourceFolder string, skipMarkMissing bool) (*Result, error) {
	ignored, err := s.ignoredFolderSet(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("%w: reading directory %s: %v", catalog.ErrIO, folder, err)
	}

	tx, err := s.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: beginning scan transaction: %v", catalog.ErrDatabase, err)
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck // rollback after commit, or on error path, is a no-op or already logged
		}
	}()

	result := &Result{}
	seenPaths := make([]string, 0, len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := norm.NFC.String(entry.Name())
		if skipName(name, entry.IsDir(), ignored) {
			continue
		}

		if entry.IsDir() {
			// A non-recursive scan does not descend; subfolder names are
			// surfaced to callers by listing the filesystem directly, not
			// by this scan registering stub rows.
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("scanner: cannot stat entry, skipping", "path", filepath.Join(folder, name), "error", err)
			continue
		}

		fullPath := filepath.Join(folder, name)
		seenPaths = append(seenPaths, fullPath)

		if err := s.reconcileFile(ctx, tx, fullPath, folder, name, info, false); err != nil {
			return nil, err
		}

		result.ScannedFiles++
	}

	if !skipMarkMissing {
		if err := s.store.MarkMissing(ctx, tx, folder, seenPaths); err != nil {
			return nil, fmt.Errorf("scanner: marking missing files under %s: %w", folder, err)
		}
	}

	if err := s.upsertFolderEntry(ctx, tx, folder, sourceFolder, int64(result.ScannedFiles)); err != nil {
		return nil, err
	}

	result.ScannedFolders = 1

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing scan transaction for %s: %v", catalog.ErrDatabase, folder, err)
	}

	committed = true

	return result, nil
}

// ScanSource performs a full recursive reconciliation of every folder under
// sourceFolder, computing fingerprints and reattaching moved files by
// content identity. It holds one connection for the whole walk, committing
// a fresh transaction every recursiveBatchSize file writes so the writer
// lock is periodically released.
func (s *Scanner) ScanSource(ctx context.Context, sourceFolder string) (*Result, error) {
	ignored, err := s.ignoredFolderSet(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	w := &recursiveWalk{
		scanner:    s,
		ignored:    ignored,
		source:     sourceFolder,
		folderSeen: map[string][]string{},
		result:     result,
	}

	if err := w.begin(ctx); err != nil {
		return nil, err
	}

	if err := w.walk(ctx, sourceFolder); err != nil {
		w.tx.Rollback() //nolint:errcheck
		return nil, err
	}

	if err := w.finish(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// recursiveWalk carries the mutable state of one ScanSource call: the
// currently open batch transaction, how many writes it has accumulated,
// and the per-folder file lists needed to mark_missing and finalize folder
// file counts once the whole subtree has been visited.
type recursiveWalk struct {
	scanner *Scanner
	ignored map[string]bool
	source  string

	tx         *sql.Tx
	batchCount int

	folderSeen  map[string][]string
	folderOrder []string

	result *Result
}

func (w *recursiveWalk) begin(ctx context.Context) error {
	tx, err := w.scanner.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning recursive scan transaction: %v", catalog.ErrDatabase, err)
	}

	w.tx = tx

	return nil
}

func (w *recursiveWalk) rotateIfNeeded(ctx context.Context) error {
	if w.batchCount < recursiveBatchSize {
		return nil
	}

	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing scan batch: %v", catalog.ErrDatabase, err)
	}

	tx, err := w.scanner.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning next scan batch: %v", catalog.ErrDatabase, err)
	}

	w.tx = tx
	w.batchCount = 0

	return nil
}

func (w *recursiveWalk) walk(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.scanner.logger.Warn("scanner: cannot read directory, skipping subtree", "path", dir, "error", err)
		return nil
	}

	w.folderOrder = append(w.folderOrder, dir)

	var subdirs []string

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := norm.NFC.String(entry.Name())
		if skipName(name, entry.IsDir(), w.ignored) {
			continue
		}

		fullPath := filepath.Join(dir, name)

		if entry.IsDir() {
			subdirs = append(subdirs, fullPath)
			continue
		}

		info, err := entry.Info()
		if err != nil {
			w.scanner.logger.Warn("scanner: cannot stat entry, skipping", "path", fullPath, "error", err)
			continue
		}

		if err := w.rotateIfNeeded(ctx); err != nil {
			return err
		}

		if err := w.scanner.reconcileFile(ctx, w.tx, fullPath, dir, name, info, true); err != nil {
			return err
		}

		w.folderSeen[dir] = append(w.folderSeen[dir], fullPath)
		w.batchCount++
		w.result.ScannedFiles++
	}

	// Mark this folder's vanished files missing before descending, so a
	// file moved from here into a subfolder is already an orphan when the
	// walk reaches its new path. finish repeats the call; it is idempotent.
	if err := w.scanner.store.MarkMissing(ctx, w.tx, dir, w.folderSeen[dir]); err != nil {
		return fmt.Errorf("scanner: marking missing files under %s: %w", dir, err)
	}

	for _, sub := range subdirs {
		if err := w.walk(ctx, sub); err != nil {
			return err
		}
	}

	return nil
}

func (w *recursiveWalk) finish(ctx context.Context) error {
	for _, dir := range w.folderOrder {
		if err := w.rotateIfNeeded(ctx); err != nil {
			return err
		}

		if err := w.scanner.store.MarkMissing(ctx, w.tx, dir, w.folderSeen[dir]); err != nil {
			return fmt.Errorf("scanner: marking missing files under %s: %w", dir, err)
		}

		if err := w.scanner.upsertFolderEntry(ctx, w.tx, dir, w.source, int64(len(w.folderSeen[dir]))); err != nil {
			return err
		}

		w.result.ScannedFolders++
	}

	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing final scan batch: %v", catalog.ErrDatabase, err)
	}

	return nil
}

// reconcileFile applies the per-file reconciliation rules: unchanged mtime
// is a no-op; otherwise the row is upserted, preserving identity for a
// known path. For a genuinely new path during a recursive walk, the
// content fingerprint is computed and checked against missing files for a
// move match before a new UUID is minted.
func (s *Scanner) reconcileFile(ctx context.Context, tx *sql.Tx, fullPath, folderPath, name string, info fs.FileInfo, recursive bool) error {
	existing, err := s.store.GetFileByPathTx(ctx, tx, fullPath)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return err
	}

	mtime := info.ModTime().UTC()

	if existing != nil && existing.ModifiedAt.Equal(mtime) {
		return nil
	}

	ext := strings.TrimPrefix(filepath.Ext(name), ".")

	entry := &catalog.FileEntry{
		CurrentPath: &fullPath,
		FolderPath:  folderPath,
		FileName:    name,
		FileType:    classify.Classify(ext),
		Extension:   strings.ToLower(ext),
		FileSize:    info.Size(),
		ModifiedAt:  mtime,
		IndexedAt:   time.Now().UTC(),
	}

	switch {
	case existing != nil:
		entry.UUID = existing.UUID
		entry.Fingerprint = existing.Fingerprint
		entry.CreatedAt = existing.CreatedAt
		entry.SourceURL = existing.SourceURL

	case recursive:
		fp, err := fingerprint.Compute(fullPath)
		if err != nil {
			s.logger.Warn("scanner: fingerprinting failed, skipping", "path", fullPath, "error", err)
			return nil
		}

		orphan, err := s.store.FindOrphanByFingerprintTx(ctx, tx, fp)

		switch {
		case err == nil:
			return s.store.UpdateFilePathTx(ctx, tx, orphan.UUID, fullPath, folderPath, name)
		case errors.Is(err, catalog.ErrNotFound):
			entry.UUID = catalog.NewFileUUID()
			entry.Fingerprint = fp
			entry.CreatedAt = mtime
		default:
			return err
		}

	default:
		entry.UUID = catalog.NewFileUUID()
		entry.Fingerprint = ""
		entry.CreatedAt = mtime
	}

	return s.store.UpsertFileTx(ctx, tx, entry)
}

// IndexSingle reconciles exactly one known path, bypassing the directory
// walk. It is used after an upload or download places a new file: the
// fingerprint is computed and checked against orphaned rows (matching
// ScanSource's move-detection path, since this too is an explicit,
// non-fast-scan operation), and the enclosing folder's FolderEntry is
// created if it does not already exist.
func (s *Scanner) IndexSingle(ctx context.Context, path, sourceFolder string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: stating %s: %v", catalog.ErrIO, path, err)
	}

	folder := filepath.Dir(path)
	name := norm.NFC.String(filepath.Base(path))

	tx, err := s.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning index transaction: %v", catalog.ErrDatabase, err)
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck // rollback after commit, or on error path, is a no-op or already logged
		}
	}()

	if err := s.reconcileFile(ctx, tx, path, folder, name, info, true); err != nil {
		return err
	}

	if _, err := s.store.GetFolderTx(ctx, tx, folder); errors.Is(err, catalog.ErrNotFound) {
		if err := s.upsertFolderEntry(ctx, tx, folder, sourceFolder, 1); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing index transaction for %s: %v", catalog.ErrDatabase, path, err)
	}

	committed = true

	return nil
}

func (s *Scanner) upsertFolderEntry(ctx context.Context, tx *sql.Tx, folder, sourceFolder string, fileCount int64) error {
	entry := &catalog.FolderEntry{
		Path:         folder,
		SourceFolder: sourceFolder,
		Name:         filepath.Base(folder),
		Depth:        depthOf(folder, sourceFolder),
		FileCount:    fileCount,
		IndexedAt:    time.Now().UTC(),
	}

	if folder != sourceFolder {
		parent := filepath.Dir(folder)
		entry.ParentPath = &parent
	}

	if err := s.store.UpsertFolderTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("scanner: upserting folder entry for %s: %w", folder, err)
	}

	return nil
}

func (s *Scanner) ignoredFolderSet(ctx context.Context) (map[string]bool, error) {
	cfg, err := s.store.GetGlobalConfig(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(cfg.IgnoredFolders))
	for _, name := range cfg.IgnoredFolders {
		set[name] = true
	}

	return set, nil
}

// skipName reports whether a directory entry must be pruned from the walk:
// hidden (dotfile) names are always skipped, and directories also skip
// configured ignored-folder names.
func skipName(name string, isDir bool, ignored map[string]bool) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}

	return isDir && ignored[name]
}

func depthOf(folder, sourceFolder string) int {
	if folder == sourceFolder {
		return 0
	}

	rel, err := filepath.Rel(sourceFolder, folder)
	if err != nil {
		return 0
	}

	return strings.Count(rel, string(filepath.Separator)) + 1
}
