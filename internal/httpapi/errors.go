package httpapi

import (
	"errors"
	"net/http"

	"github.com/bwan3150/resourcer/internal/catalog"
)

// writeError maps the catalog error sentinels to the status codes in
// spec §7 at the single boundary where Go errors become JSON.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrIO):
		status = http.StatusBadGateway
	case errors.Is(err, catalog.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, catalog.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrDatabase):
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
