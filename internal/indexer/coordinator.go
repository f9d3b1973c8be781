// Package indexer decides, on every catalog read or external mutation,
// whether to scan synchronously, trigger a background refresh, or do
// nothing. It enforces at most one concurrent full source-folder rebuild.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/bwan3150/resourcer/internal/catalog"
	"github.com/bwan3150/resourcer/internal/query"
	"github.com/bwan3150/resourcer/internal/scanner"
)

// ScanStatus reports the in-memory state of a source folder's full rebuild.
type ScanStatus struct {
	IsScanning     bool
	ScannedFiles   int
	ScannedFolders int
}

// RebuildResult is returned by TriggerRebuild.
type RebuildResult struct {
	Status ScanStatus
	// Started is false when a rebuild was already in flight for this
	// source and the request was folded into it (already_scanning).
	Started bool
}

// Coordinator is the single entry point HTTP handlers use to read through
// the catalog. It owns no data of its own beyond the in-memory ScanStatus
// table — everything else is delegated to the scanner and query engine.
type Coordinator struct {
	store   *catalog.Store
	scanner *scanner.Scanner
	query   *query.Engine
	logger  *slog.Logger

	mu     stdsync.RWMutex
	status map[string]*ScanStatus
	paused map[string]bool

	sf singleflight.Group
	// bg dispatches background scans and rebuilds off the calling
	// goroutine. Its zero value is ready to use; Go only ever returns nil
	// here since every task logs its own failure, so Wait is never called
	// — a background task's lifetime outlives any single request.
	bg errgroup.Group
}

// New returns a Coordinator wiring together the given store, scanner and
// query engine.
func New(store *catalog.Store, sc *scanner.Scanner, qe *query.Engine, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		store:   store,
		scanner: sc,
		query:   qe,
		logger:  logger,
		status:  make(map[string]*ScanStatus),
		paused:  make(map[string]bool),
	}
}

// SetPaused pauses or resumes background rescans for source. Explicit
// requests — ListFiles's synchronous first-visit scan and a user-initiated
// TriggerRebuild — are never blocked by a pause; only the opportunistic
// background refresh fired after serving a stale page is skipped.
func (c *Coordinator) SetPaused(source string, paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paused[source] = paused
}

// IsPaused reports whether background rescans are paused for source.
func (c *Coordinator) IsPaused(source string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.paused[source]
}

// Status returns a copy of the current ScanStatus for source, or a zero
// value if no rebuild has ever been triggered for it.
func (c *Coordinator) Status(source string) ScanStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, ok := c.status[source]
	if !ok {
		return ScanStatus{}
	}

	return *st
}

func (c *Coordinator) setScanning(source string, scanning bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.status[source]
	if !ok {
		st = &ScanStatus{}
		c.status[source] = st
	}

	st.IsScanning = scanning

	if scanning {
		st.ScannedFiles = 0
		st.ScannedFolders = 0
	}
}

func (c *Coordinator) recordProgress(source string, files, folders int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.status[source]
	if !ok {
		st = &ScanStatus{}
		c.status[source] = st
	}

	st.ScannedFiles = files
	st.ScannedFolders = folders
}

// ListFiles implements the list_files decision table: an unindexed folder
// is scanned synchronously (with mark_missing) before the query runs; a
// stale, already-indexed folder is queried immediately and a background
// refresh (without mark_missing) is fired afterward; a fresh folder is
// queried directly.
func (c *Coordinator) ListFiles(ctx context.Context, folder, sourceFolder string, offset, limit int, typeFilter catalog.FileType, sort catalog.SortOrder) (*catalog.FilePage, error) {
	indexed, err := c.store.IsFolderIndexed(ctx, folder)
	if err != nil {
		return nil, err
	}

	if !indexed {
		if _, err := c.scanner.ScanFolder(ctx, folder, sourceFolder, false); err != nil {
			return nil, err
		}

		return c.query.ListFiles(ctx, folder, offset, limit, typeFilter, sort)
	}

	stale, err := c.scanner.NeedsRescan(ctx, folder)
	if err != nil {
		return nil, err
	}

	page, err := c.query.ListFiles(ctx, folder, offset, limit, typeFilter, sort)
	if err != nil {
		return nil, err
	}

	if stale && !c.IsPaused(sourceFolder) {
		c.backgroundScanFolder(folder, sourceFolder)
	}

	return page, nil
}

// backgroundScanFolder fires a non-blocking refresh of folder. Filesystem
// and database errors are logged, not surfaced: nothing is awaiting this
// scan's result.
func (c *Coordinator) backgroundScanFolder(folder, sourceFolder string) {
	c.bg.Go(func() error {
		if _, err := c.scanner.ScanFolder(context.Background(), folder, sourceFolder, true); err != nil {
			c.logger.Warn("indexer: background folder scan failed", "folder", folder, "error", err)
		}

		return nil
	})
}

// TriggerRebuild starts a full recursive rebuild of source, unless one is
// already in flight, in which case it returns immediately with
// Started=false and the in-progress counters. The rebuild itself runs on
// a background goroutine; TriggerRebuild never blocks on its completion.
// IsScanning is checked and set under c.mu, so of two concurrent callers
// only one gets Started=true; the singleflight group keyed by source also
// folds any overlapping background run into the one in flight, so at most
// one scanner.ScanSource call runs per source at a time.
func (c *Coordinator) TriggerRebuild(ctx context.Context, source string, force bool) (*RebuildResult, error) {
	c.mu.Lock()

	st, ok := c.status[source]
	if !ok {
		st = &ScanStatus{}
		c.status[source] = st
	}

	if st.IsScanning {
		snapshot := *st
		c.mu.Unlock()

		return &RebuildResult{Status: snapshot, Started: false}, nil
	}

	st.IsScanning = true
	st.ScannedFiles = 0
	st.ScannedFolders = 0
	c.mu.Unlock()

	c.bg.Go(func() error {
		_, _, _ = c.sf.Do(source, func() (any, error) {
			return nil, c.runRebuild(context.Background(), source, force)
		})

		return nil
	})

	return &RebuildResult{Status: c.Status(source), Started: true}, nil
}

// runRebuild is the body of a full rebuild: optional force-clear, the
// recursive scan, and a catch-all that guarantees is_scanning is released
// even if the scan panics.
func (c *Coordinator) runRebuild(ctx context.Context, source string, force bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("indexer: panic during full rebuild", "source", source, "panic", r)
			err = fmt.Errorf("indexer: rebuild panicked: %v", r)
		}

		c.setScanning(source, false)
	}()

	if force {
		if _, clearErr := c.query.ClearFilesUnder(ctx, source); clearErr != nil {
			return clearErr
		}
	}

	result, scanErr := c.scanner.ScanSource(ctx, source)
	if scanErr != nil {
		return scanErr
	}

	c.recordProgress(source, result.ScannedFiles, result.ScannedFolders)

	return nil
}

// OnSourceSwitched triggers a background full rebuild if source has never
// been scanned (no FolderEntry rows at all), respecting the single-flight
// guard on TriggerRebuild.
func (c *Coordinator) OnSourceSwitched(ctx context.Context, source string) {
	indexed, err := c.store.IsFolderIndexed(ctx, source)
	if err != nil {
		c.logger.Warn("indexer: checking source indexed state failed", "source", source, "error", err)
		return
	}

	if indexed {
		return
	}

	c.bg.Go(func() error {
		if _, err := c.TriggerRebuild(context.Background(), source, false); err != nil {
			c.logger.Warn("indexer: background rebuild after source switch failed", "source", source, "error", err)
		}

		return nil
	})
}

// ApplyMove updates a file's location after a successful filesystem
// rename/move. It never re-scans: the row is updated in place, preserving
// UUID, fingerprint and created_at.
func (c *Coordinator) ApplyMove(ctx context.Context, uuid, newPath, newFolder, newName string) error {
	return c.query.UpdateFilePath(ctx, uuid, newPath, newFolder, newName)
}

// IndexOne indexes exactly one path after an upload or download completes,
// bypassing the directory walk. It upserts the FileEntry and ensures the
// enclosing FolderEntry exists.
func (c *Coordinator) IndexOne(ctx context.Context, path, sourceFolder string) error {
	return c.scanner.IndexSingle(ctx, path, sourceFolder)
}
