package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/bwan3150/resourcer/internal/catalog"
)

type createTagRequest struct {
	SourceFolder string `json:"source_folder"`
	Name         string `json:"name"`
	Color        string `json:"color"`
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.SourceFolder == "" || req.Name == "" {
		writeError(w, fmt.Errorf("%w: source_folder and name are required", catalog.ErrInvalidInput))
		return
	}

	tag, err := s.tags.Create(r.Context(), req.SourceFolder, req.Name, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTagDTO(tag))
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	sourceFolder := r.URL.Query().Get("source_folder")
	if sourceFolder == "" {
		writeError(w, fmt.Errorf("%w: source_folder is required", catalog.ErrInvalidInput))
		return
	}

	tags, err := s.tags.List(r.Context(), sourceFolder)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTagDTOs(tags))
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("tag_id"), 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: tag_id must be an integer", catalog.ErrInvalidInput))
		return
	}

	if err := s.tags.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListFileTags(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")

	tags, err := s.tags.ForFile(r.Context(), uuid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTagDTOs(tags))
}

type attachTagRequest struct {
	TagID int64 `json:"tag_id"`
}

func (s *Server) handleAttachTag(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")

	var req attachTagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.tags.Attach(r.Context(), uuid, req.TagID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDetachTag(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")

	id, err := strconv.ParseInt(r.PathValue("tag_id"), 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: tag_id must be an integer", catalog.ErrInvalidInput))
		return
	}

	if err := s.tags.Detach(r.Context(), uuid, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
