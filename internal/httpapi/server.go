// Package httpapi exposes the indexer over HTTP for the front end: the six
// core endpoints of spec.md §6 plus the expansion's tag, ordering,
// move/rename, transfer-hook and preview endpoints. Routing is stdlib
// net/http's ServeMux with Go 1.22+ method+path patterns — no third-party
// router appears anywhere in the example pack this was grounded on.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/bwan3150/resourcer/internal/catalog"
	"github.com/bwan3150/resourcer/internal/indexer"
	"github.com/bwan3150/resourcer/internal/query"
	"github.com/bwan3150/resourcer/internal/tagstore"
	"github.com/bwan3150/resourcer/internal/transfer"
)

// Server wires every package the HTTP layer reads or writes through. It
// holds no state of its own.
type Server struct {
	store    *catalog.Store
	coord    *indexer.Coordinator
	query    *query.Engine
	tags     *tagstore.Store
	recorder *transfer.Recorder
	logger   *slog.Logger
}

// New returns a Server over the given components.
func New(store *catalog.Store, coord *indexer.Coordinator, qe *query.Engine, tags *tagstore.Store, recorder *transfer.Recorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{store: store, coord: coord, query: qe, tags: tags, recorder: recorder, logger: logger}
}

// Handler builds the routed mux. Called once at startup.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/indexer/scan", s.handleScan)
	mux.HandleFunc("GET /api/indexer/status", s.handleStatus)
	mux.HandleFunc("GET /api/indexer/files", s.handleListFiles)
	mux.HandleFunc("GET /api/indexer/file", s.handleGetFile)
	mux.HandleFunc("GET /api/indexer/folders", s.handleListFolders)
	mux.HandleFunc("GET /api/indexer/breadcrumb", s.handleBreadcrumb)

	mux.HandleFunc("GET /api/scan/status/stream", s.handleScanStatusStream)
	mux.HandleFunc("POST /api/indexer/pause", s.handleSetPaused)

	mux.HandleFunc("POST /api/folders/order", s.handleSetFolderOrder)

	mux.HandleFunc("POST /api/files/move", s.handleMove)
	mux.HandleFunc("POST /api/files/rename", s.handleRename)

	mux.HandleFunc("GET /api/files/{uuid}/tags", s.handleListFileTags)
	mux.HandleFunc("POST /api/files/{uuid}/tags", s.handleAttachTag)
	mux.HandleFunc("DELETE /api/files/{uuid}/tags/{tag_id}", s.handleDetachTag)
	mux.HandleFunc("GET /api/tags", s.handleListTags)
	mux.HandleFunc("POST /api/tags", s.handleCreateTag)
	mux.HandleFunc("DELETE /api/tags/{tag_id}", s.handleDeleteTag)

	mux.HandleFunc("POST /api/transfer/downloaded", s.handleTransferDownloaded)
	mux.HandleFunc("POST /api/transfer/uploaded", s.handleTransferUploaded)

	mux.HandleFunc("GET /api/preview/{uuid}", s.handlePreview)

	return mux
}
