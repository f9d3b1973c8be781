package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bwan3150/resourcer/internal/catalog"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding request body: %v", catalog.ErrInvalidInput, err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing left to do but note it happened.
		fmt.Fprintf(w, `{"error":"encoding response: %s"}`, err)
	}
}
