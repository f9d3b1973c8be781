package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/bwan3150/resourcer/internal/preview"
)

// handlePreview streams a file's preview bytes, or 501 for a type preview
// does not render.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")

	f, err := s.query.GetFileByUUID(r.Context(), uuid)
	if err != nil {
		writeError(w, err)
		return
	}

	rc, contentType, err := preview.Open(f)
	if errors.Is(err, preview.ErrNotImplemented) {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": err.Error()})
		return
	}

	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
