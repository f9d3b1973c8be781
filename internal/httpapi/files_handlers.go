package httpapi

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bwan3150/resourcer/internal/catalog"
)

type moveRequest struct {
	UUID       string `json:"uuid"`
	DestFolder string `json:"dest_folder"`
}

type renameRequest struct {
	UUID    string `json:"uuid"`
	NewName string `json:"new_name"`
}

// handleMove relocates a cataloged file to a different folder on disk,
// then updates its catalog row in place via Coordinator.ApplyMove — the
// row's UUID, fingerprint and created_at survive the move untouched.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.UUID == "" || req.DestFolder == "" {
		writeError(w, fmt.Errorf("%w: uuid and dest_folder are required", catalog.ErrInvalidInput))
		return
	}

	f, err := s.query.GetFileByUUID(r.Context(), req.UUID)
	if err != nil {
		writeError(w, err)
		return
	}

	if f.CurrentPath == nil {
		writeError(w, fmt.Errorf("%w: file %s is missing from disk", catalog.ErrNotFound, req.UUID))
		return
	}

	newPath := filepath.Join(req.DestFolder, f.FileName)

	if err := os.Rename(*f.CurrentPath, newPath); err != nil {
		writeError(w, fmt.Errorf("%w: moving %s: %v", catalog.ErrIO, *f.CurrentPath, err))
		return
	}

	if err := s.coord.ApplyMove(r.Context(), req.UUID, newPath, req.DestFolder, f.FileName); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.query.GetFileByUUID(r.Context(), req.UUID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newFileDTO(updated))
}

// handleRename renames a cataloged file in place, then updates its catalog
// row via Coordinator.ApplyMove.
func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.UUID == "" || req.NewName == "" {
		writeError(w, fmt.Errorf("%w: uuid and new_name are required", catalog.ErrInvalidInput))
		return
	}

	f, err := s.query.GetFileByUUID(r.Context(), req.UUID)
	if err != nil {
		writeError(w, err)
		return
	}

	if f.CurrentPath == nil {
		writeError(w, fmt.Errorf("%w: file %s is missing from disk", catalog.ErrNotFound, req.UUID))
		return
	}

	newPath := filepath.Join(f.FolderPath, req.NewName)

	if err := os.Rename(*f.CurrentPath, newPath); err != nil {
		writeError(w, fmt.Errorf("%w: renaming %s: %v", catalog.ErrIO, *f.CurrentPath, err))
		return
	}

	if err := s.coord.ApplyMove(r.Context(), req.UUID, newPath, f.FolderPath, req.NewName); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.query.GetFileByUUID(r.Context(), req.UUID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newFileDTO(updated))
}

type setFolderOrderRequest struct {
	FolderPath string   `json:"folder_path"`
	Order      []string `json:"order"`
}

func (s *Server) handleSetFolderOrder(w http.ResponseWriter, r *http.Request) {
	var req setFolderOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.FolderPath == "" {
		writeError(w, fmt.Errorf("%w: folder_path is required", catalog.ErrInvalidInput))
		return
	}

	if err := s.store.SetSubfolderOrder(r.Context(), req.FolderPath, req.Order); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
