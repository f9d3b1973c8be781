package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/bwan3150/resourcer/internal/catalog"
	"github.com/bwan3150/resourcer/internal/query"
)

type scanRequest struct {
	SourceFolder string `json:"source_folder"`
	Force        bool   `json:"force"`
}

type scanResponse struct {
	Status         string `json:"status"`
	ScannedFiles   int    `json:"scanned_files"`
	ScannedFolders int    `json:"scanned_folders"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.SourceFolder == "" {
		writeError(w, fmt.Errorf("%w: source_folder is required", catalog.ErrInvalidInput))
		return
	}

	result, err := s.coord.TriggerRebuild(r.Context(), req.SourceFolder, req.Force)
	if err != nil {
		writeError(w, err)
		return
	}

	status := "started"
	if !result.Started {
		status = "already_scanning"
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Status:         status,
		ScannedFiles:   result.Status.ScannedFiles,
		ScannedFolders: result.Status.ScannedFolders,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source_folder")
	if source == "" {
		writeError(w, fmt.Errorf("%w: source_folder is required", catalog.ErrInvalidInput))
		return
	}

	writeJSON(w, http.StatusOK, newScanStatusDTO(s.coord.Status(source), s.coord.IsPaused(source)))
}

type pauseRequest struct {
	SourceFolder string `json:"source_folder"`
	Paused       bool   `json:"paused"`
}

// handleSetPaused toggles whether the coordinator may start a background
// rescan for a source folder. Paused source folders still serve reads from
// whatever is already indexed — pausing only suppresses new scan activity.
func (s *Server) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.SourceFolder == "" {
		writeError(w, fmt.Errorf("%w: source_folder is required", catalog.ErrInvalidInput))
		return
	}

	s.coord.SetPaused(req.SourceFolder, req.Paused)
	writeJSON(w, http.StatusOK, newScanStatusDTO(s.coord.Status(req.SourceFolder), s.coord.IsPaused(req.SourceFolder)))
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	folder := q.Get("folder_path")
	if folder == "" {
		writeError(w, fmt.Errorf("%w: folder_path is required", catalog.ErrInvalidInput))
		return
	}

	offset, err := parseIntParam(q, "offset", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	limit, err := parseIntParam(q, "limit", catalog.MaxPageLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	sourceFolder, err := s.query.ResolveSourceFolder(r.Context(), folder)
	if err != nil {
		writeError(w, err)
		return
	}

	typeFilter := catalog.FileType(q.Get("file_type"))
	sort := catalog.SortOrder(q.Get("sort"))

	page, err := s.coord.ListFiles(r.Context(), folder, sourceFolder, offset, limit, typeFilter, sort)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newFilePageDTO(page))
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	uuid := r.URL.Query().Get("uuid")
	if uuid == "" {
		writeError(w, fmt.Errorf("%w: uuid is required", catalog.ErrInvalidInput))
		return
	}

	f, err := s.query.GetFileByUUID(r.Context(), uuid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newFileDTO(f))
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	parent := q.Get("parent_path")
	if parent == "" {
		parent = q.Get("source_folder")
	}

	if parent == "" {
		writeError(w, fmt.Errorf("%w: parent_path or source_folder is required", catalog.ErrInvalidInput))
		return
	}

	subfolders, err := s.query.ListSubfolders(r.Context(), parent)
	if err != nil {
		writeError(w, err)
		return
	}

	cfg, err := s.store.GetGlobalConfig(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	hidden := make(map[string]bool, len(cfg.HiddenFolders))
	for _, name := range cfg.HiddenFolders {
		hidden[name] = true
	}

	out := make([]subfolderDTO, 0, len(subfolders))

	for _, sf := range subfolders {
		if hidden[sf.Name] {
			continue
		}

		out = append(out, newSubfolderDTO(sf))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBreadcrumb(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("folder_path")
	if folder == "" {
		writeError(w, fmt.Errorf("%w: folder_path is required", catalog.ErrInvalidInput))
		return
	}

	sourceFolder, err := s.query.ResolveSourceFolder(r.Context(), folder)
	if err != nil {
		writeError(w, err)
		return
	}

	crumbs, err := query.Breadcrumb(folder, sourceFolder)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newCrumbDTOs(crumbs))
}

func parseIntParam(q map[string][]string, name string, def int) (int, error) {
	vals, ok := q[name]
	if !ok || len(vals) == 0 || vals[0] == "" {
		return def, nil
	}

	n, err := strconv.Atoi(vals[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", catalog.ErrInvalidInput, name)
	}

	return n, nil
}
