package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// scanStatusPollInterval is how often a connected client receives a fresh
// ScanStatus snapshot. There is no push notification from the coordinator
// itself, so this handler polls it on a ticker for the life of the
// connection.
const scanStatusPollInterval = 500 * time.Millisecond

// handleScanStatusStream upgrades to a websocket connection and pushes the
// requested source folder's ScanStatus on every tick until the client
// disconnects. Grounded on the teacher's unused `coder/websocket`
// dependency (a config flag with no wired listener) — here it finally
// backs a real notification channel.
func (s *Server) handleScanStatusStream(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source_folder")
	if source == "" {
		http.Error(w, "source_folder is required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("httpapi: websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	ticker := time.NewTicker(scanStatusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "client disconnected")
			return
		case <-ticker.C:
			data, err := json.Marshal(newScanStatusDTO(s.coord.Status(source), s.coord.IsPaused(source)))
			if err != nil {
				s.logger.Warn("httpapi: marshaling scan status failed", "error", err)
				return
			}

			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}
