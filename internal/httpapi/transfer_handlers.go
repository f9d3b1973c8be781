package httpapi

import (
	"fmt"
	"net/http"

	"github.com/bwan3150/resourcer/internal/catalog"
	"github.com/bwan3150/resourcer/internal/transfer"
)

type transferDownloadedRequest struct {
	TaskID       string `json:"task_id"`
	URL          string `json:"url"`
	Platform     string `json:"platform"`
	Status       string `json:"status"`
	FilePath     string `json:"file_path"`
	SourceFolder string `json:"source_folder"`
	Error        string `json:"error"`
}

// handleTransferDownloaded is called by the (stubbed) downloader subsystem
// once a task finishes. It appends a download_history row and, on success,
// indexes the file so it appears in list_files immediately.
func (s *Server) handleTransferDownloaded(w http.ResponseWriter, r *http.Request) {
	var req transferDownloadedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.TaskID == "" || req.Status == "" {
		writeError(w, fmt.Errorf("%w: task_id and status are required", catalog.ErrInvalidInput))
		return
	}

	err := s.recorder.RecordDownload(r.Context(), transfer.DownloadOutcome{
		TaskID:       req.TaskID,
		URL:          req.URL,
		Platform:     req.Platform,
		Status:       req.Status,
		FilePath:     req.FilePath,
		SourceFolder: req.SourceFolder,
		Err:          req.Error,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

type transferUploadedRequest struct {
	TaskID       string `json:"task_id"`
	FileName     string `json:"file_name"`
	TargetFolder string `json:"target_folder"`
	Status       string `json:"status"`
	FileSize     int64  `json:"file_size"`
	FilePath     string `json:"file_path"`
	SourceFolder string `json:"source_folder"`
	Error        string `json:"error"`
}

// handleTransferUploaded is called by the (stubbed) uploader subsystem once
// a task finishes. It appends an upload_history row and, on success,
// indexes the uploaded file so it appears in list_files immediately.
func (s *Server) handleTransferUploaded(w http.ResponseWriter, r *http.Request) {
	var req transferUploadedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.TaskID == "" || req.Status == "" {
		writeError(w, fmt.Errorf("%w: task_id and status are required", catalog.ErrInvalidInput))
		return
	}

	err := s.recorder.RecordUpload(r.Context(), transfer.UploadOutcome{
		TaskID:       req.TaskID,
		FileName:     req.FileName,
		TargetFolder: req.TargetFolder,
		Status:       req.Status,
		FileSize:     req.FileSize,
		FilePath:     req.FilePath,
		SourceFolder: req.SourceFolder,
		Err:          req.Error,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
