package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwan3150/resourcer/internal/catalog"
	"github.com/bwan3150/resourcer/internal/indexer"
	"github.com/bwan3150/resourcer/internal/query"
	"github.com/bwan3150/resourcer/internal/scanner"
	"github.com/bwan3150/resourcer/internal/tagstore"
	"github.com/bwan3150/resourcer/internal/transfer"
)

type testEnv struct {
	handler http.Handler
	store   *catalog.Store
	libDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	libDir := t.TempDir()
	dbDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := catalog.Open(context.Background(), filepath.Join(dbDir, "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.AddSourceFolder(context.Background(), libDir)
	require.NoError(t, err)

	sc := scanner.New(store, logger)
	qe := query.New(store)
	coord := indexer.New(store, sc, qe, logger)
	tags := tagstore.New(store)
	recorder := transfer.NewRecorder(store, coord)

	srv := New(store, coord, qe, tags, recorder, logger)

	return &testEnv{handler: srv.Handler(), store: store, libDir: libDir}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	return rec
}

func writeLibFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestHandleScan_ReportsStarted(t *testing.T) {
	env := newTestEnv(t)
	writeLibFile(t, env.libDir, "a.jpg", "aaa")

	rec := env.do(t, "POST", "/api/indexer/scan", scanRequest{SourceFolder: env.libDir})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp scanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "started", resp.Status)
}

func TestHandleScan_MissingSourceFolderIsBadRequest(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/indexer/scan", scanRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListFiles_FirstVisitScansThenReturnsPage(t *testing.T) {
	env := newTestEnv(t)
	writeLibFile(t, env.libDir, "a.jpg", "aaa")
	writeLibFile(t, env.libDir, "b.png", "bbb")

	rec := env.do(t, "GET", "/api/indexer/files?folder_path="+env.libDir, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page filePageDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Files, 2)
}

func TestHandleGetFile_NotFoundMapsTo404(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/indexer/file?uuid=nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetFile_MissingUUIDIsBadRequest(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/indexer/file", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListFolders_HidesConfiguredFolder(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.Mkdir(filepath.Join(env.libDir, "visible"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(env.libDir, "secret"), 0o755))
	require.NoError(t, env.store.SetHiddenFolders(context.Background(), []string{"secret"}))

	rec := env.do(t, "GET", "/api/indexer/folders?parent_path="+env.libDir, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var folders []subfolderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &folders))
	require.Len(t, folders, 1)
	assert.Equal(t, "visible", folders[0].Name)
}

func TestHandleBreadcrumb_ReturnsOrderedCrumbs(t *testing.T) {
	env := newTestEnv(t)
	sub := filepath.Join(env.libDir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	rec := env.do(t, "GET", "/api/indexer/breadcrumb?folder_path="+sub, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var crumbs []crumbDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crumbs))
	require.Len(t, crumbs, 3)
	assert.Equal(t, "b", crumbs[2].Name)
}

func TestHandleMove_RelocatesFileAndPreservesUUID(t *testing.T) {
	env := newTestEnv(t)
	writeLibFile(t, env.libDir, "a.jpg", "aaa")
	require.NoError(t, os.Mkdir(filepath.Join(env.libDir, "dest"), 0o755))

	rec := env.do(t, "GET", "/api/indexer/files?folder_path="+env.libDir, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page filePageDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Files, 1)

	uuid := page.Files[0].UUID
	destFolder := filepath.Join(env.libDir, "dest")

	rec = env.do(t, "POST", "/api/files/move", moveRequest{UUID: uuid, DestFolder: destFolder})
	require.Equal(t, http.StatusOK, rec.Code)

	var moved fileDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &moved))
	assert.Equal(t, uuid, moved.UUID)
	assert.Equal(t, destFolder, moved.FolderPath)

	_, err := os.Stat(filepath.Join(destFolder, "a.jpg"))
	require.NoError(t, err)
}

func TestHandleTags_CreateAttachListDetach(t *testing.T) {
	env := newTestEnv(t)
	writeLibFile(t, env.libDir, "a.jpg", "aaa")

	rec := env.do(t, "GET", "/api/indexer/files?folder_path="+env.libDir, nil)
	var page filePageDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	uuid := page.Files[0].UUID

	rec = env.do(t, "POST", "/api/tags", createTagRequest{SourceFolder: env.libDir, Name: "favorites", Color: "#ff0000"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var tag tagDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tag))

	rec = env.do(t, "POST", "/api/files/"+uuid+"/tags", attachTagRequest{TagID: tag.ID})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, "GET", "/api/files/"+uuid+"/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fileTags []tagDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fileTags))
	require.Len(t, fileTags, 1)

	rec = env.do(t, "DELETE", "/api/files/"+uuid+"/tags/"+strconv.FormatInt(tag.ID, 10), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleTransferDownloaded_CompletedIndexesFile(t *testing.T) {
	env := newTestEnv(t)
	path := writeLibFile(t, env.libDir, "cat.jpg", "cat-bytes")

	rec := env.do(t, "POST", "/api/transfer/downloaded", transferDownloadedRequest{
		TaskID:       "task-1",
		URL:          "https://example.com/cat.jpg",
		Platform:     "generic",
		Status:       "completed",
		FilePath:     path,
		SourceFolder: env.libDir,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	f, err := env.store.GetFileByPath(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "cat.jpg", f.FileName)
}

func TestHandleTransferUploaded_CompletedIndexesFile(t *testing.T) {
	env := newTestEnv(t)
	path := writeLibFile(t, env.libDir, "dog.png", "dog-bytes")

	rec := env.do(t, "POST", "/api/transfer/uploaded", transferUploadedRequest{
		TaskID:       "task-1",
		FileName:     "dog.png",
		TargetFolder: env.libDir,
		Status:       "completed",
		FileSize:     9,
		FilePath:     path,
		SourceFolder: env.libDir,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	f, err := env.store.GetFileByPath(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "dog.png", f.FileName)
}

func TestHandleSetPaused_TogglesStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/indexer/pause", pauseRequest{SourceFolder: env.libDir, Paused: true})
	require.Equal(t, http.StatusOK, rec.Code)

	var status scanStatusDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.IsPaused)

	rec = env.do(t, "GET", "/api/indexer/status?source_folder="+env.libDir, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.IsPaused)
}

func TestHandlePreview_ImageServesBytes(t *testing.T) {
	env := newTestEnv(t)
	writeLibFile(t, env.libDir, "a.jpg", "jpeg-bytes")

	rec := env.do(t, "GET", "/api/indexer/files?folder_path="+env.libDir, nil)
	var page filePageDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	uuid := page.Files[0].UUID

	rec = env.do(t, "GET", "/api/preview/"+uuid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}
