package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"audiodex/config"
	"audiodex/services"
	"audiodex/websocket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trackBytes = "not real mpeg frames"

// newTestRouter stands up the full router over a temp library containing one
// mp3 file.
func newTestRouter(t *testing.T) (*gin.Engine, services.ScanQueue) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Artist", "Album"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Artist", "Album", "01 - Track.mp3"), []byte(trackBytes), 0644))

	t.Setenv("AUDIODEX_LIBRARY", root)

	hub := websocket.NewHub()
	go hub.Run()

	index := services.NewFSIndex(root)
	scanner := services.NewScanner(index, config.GetMinDurationMS())
	scanQueue := services.NewScanQueue(scanner, root, hub)
	scanQueue.Start()

	return NewRouter(scanQueue, hub), scanQueue
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// waitForScan polls the scan endpoint until the job reaches a terminal state.
func waitForScan(t *testing.T, r *gin.Engine, scanID string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w := doRequest(r, http.MethodGet, "/api/scans/"+scanID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		scan := decodeBody(t, w)["scan"].(map[string]any)
		switch scan["status"] {
		case "completed", "empty", "failed", "cancelled":
			return scan
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("scan never reached a terminal state")
	return nil
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "audiodex", body["service"])
}

func TestAPIStatusReportsLibrary(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, os.Getenv("AUDIODEX_LIBRARY"), body["library_location"])
}

// TestLibraryEmptyBeforeScan verifies the library endpoint is a 200 with
// count 0 before any scan has published a snapshot.
func TestLibraryEmptyBeforeScan(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/library", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(0), body["count"])
}

// TestScanLifecycle walks trigger, status polling and the resulting library
// listing.
func TestScanLifecycle(t *testing.T) {
	t.Setenv("AUDIODEX_MIN_DURATION_MS", "0")
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/scans", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	scan := decodeBody(t, w)["scan"].(map[string]any)
	scanID := scan["id"].(string)
	require.NotEmpty(t, scanID)
	assert.Equal(t, "queued", scan["status"])

	// The test file carries no decodable frames, so its duration probes as 0;
	// with the cutoff at 0 the entry is still excluded (0 <= 0), leaving the
	// scan empty.
	done := waitForScan(t, r, scanID)
	assert.Equal(t, "empty", done["status"])

	all := doRequest(r, http.MethodGet, "/api/scans", nil)
	require.Equal(t, http.StatusOK, all.Code)
	assert.GreaterOrEqual(t, decodeBody(t, all)["total"].(float64), float64(1))
}

func TestGetScanNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/scans/no-such-scan", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelUnknownScan(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodDelete, "/api/scans/no-such-scan", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestStreamEntry verifies the locator byte-fetch contract, including range
// requests.
func TestStreamEntry(t *testing.T) {
	r, _ := newTestRouter(t)
	locator := "/api/library/stream/Artist/Album/01%20-%20Track.mp3"

	w := doRequest(r, http.MethodGet, locator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, trackBytes, w.Body.String())

	ranged := doRequest(r, http.MethodGet, locator, map[string]string{"Range": "bytes=0-4"})
	require.Equal(t, http.StatusPartialContent, ranged.Code)
	assert.Equal(t, trackBytes[:5], ranged.Body.String())
	assert.True(t, strings.HasPrefix(ranged.Header().Get("Content-Range"), "bytes 0-4/"))
}

func TestStreamEntryNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/library/stream/missing.mp3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamEntryRejectsTraversal(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/library/stream/..%2F..%2Fetc%2Fpasswd.mp3", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStreamEntryRejectsNonAudio(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/library/stream/notes.txt", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetSettings(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	r, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, os.Getenv("AUDIODEX_LIBRARY"), body["libraryLocation"])
}
