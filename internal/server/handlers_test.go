package server

import (
	"bytes"
	"encoding/json"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/photoflow/internal/batch"
	"github.com/MeKo-Tech/photoflow/internal/imageio"
	"github.com/MeKo-Tech/photoflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	return NewServer(Config{
		Host:           "localhost",
		Port:           8080,
		CORSOrigin:     "*",
		MaxUploadMB:    10,
		TimeoutSec:     30,
		PreviewMaxEdge: 400,
	})
}

func newTestMux(s *Server) *http.ServeMux {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

// jobConfigBody marshals a runnable job configuration backed by a real
// input folder containing count images.
func jobConfigBody(t *testing.T, count int) (*bytes.Reader, batch.Config) {
	t.Helper()

	inputDir := testutil.CreateTempDir(t)
	img := testutil.CreateGradientImage(16, 16)
	for i := 0; i < count; i++ {
		testutil.SaveImage(t, img, filepath.Join(inputDir, "img_"+string(rune('a'+i))+".png"))
	}

	cfg := batch.DefaultConfig()
	cfg.InputFolder = inputDir
	cfg.OutputFolder = filepath.Join(testutil.CreateTempDir(t), "out")

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	return bytes.NewReader(data), cfg
}

func TestHealthHandler(t *testing.T) {
	mux := newTestMux(newTestServer())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(newTestServer())

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestFormatsHandler(t *testing.T) {
	mux := newTestMux(newTestServer())

	req := httptest.NewRequest(http.MethodGet, "/formats", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp FormatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, len(imageio.SupportedExtensions), resp.Count)
	assert.Contains(t, resp.Extensions, ".jpg")
	assert.Contains(t, resp.Extensions, ".webp")
}

func TestDiscoverHandler(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.SaveImage(t, testutil.CreateTestImage(4, 4, color.White), filepath.Join(dir, "a.png"))
	testutil.SaveImage(t, testutil.CreateTestImage(4, 4, color.White), filepath.Join(dir, "b.jpg"))

	mux := newTestMux(newTestServer())

	req := httptest.NewRequest(http.MethodGet, "/discover?folder="+dir, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp DiscoverResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, dir, resp.Folder)
}

func TestDiscoverHandler_MissingParam(t *testing.T) {
	mux := newTestMux(newTestServer())

	req := httptest.NewRequest(http.MethodGet, "/discover", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscoverHandler_UnknownFolder(t *testing.T) {
	mux := newTestMux(newTestServer())

	req := httptest.NewRequest(http.MethodGet, "/discover?folder=/nonexistent", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidateHandler(t *testing.T) {
	body, _ := jobConfigBody(t, 1)
	mux := newTestMux(newTestServer())

	req := httptest.NewRequest(http.MethodPost, "/validate", body)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Problems)
}

func TestValidateHandler_ReportsProblems(t *testing.T) {
	cfg := batch.DefaultConfig()
	cfg.Saturation = 300
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	mux := newTestMux(newTestServer())

	req := httptest.NewRequest(http.MethodPost, "/validate", bytes.NewReader(data))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Problems)
}

func TestValidateHandler_RejectsUnknownFields(t *testing.T) {
	mux := newTestMux(newTestServer())

	req := httptest.NewRequest(http.MethodPost, "/validate", bytes.NewReader([]byte(`{"bogus": 1}`)))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessStart(t *testing.T) {
	body, cfg := jobConfigBody(t, 2)
	srv := newTestServer()
	mux := newTestMux(srv)

	req := httptest.NewRequest(http.MethodPost, "/process/start", body)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp StartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Started)

	srv.Runner().Wait()
	final := srv.Runner().Snapshot()
	assert.Equal(t, batch.StateCompleted, final.State)
	assert.Equal(t, 2, final.SuccessCount)
	assert.True(t, testutil.FileExists(filepath.Join(cfg.OutputFolder, "img_a.png")))
}

func TestProcessStart_InvalidConfig(t *testing.T) {
	cfg := batch.DefaultConfig() // no folders set
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	mux := newTestMux(newTestServer())

	req := httptest.NewRequest(http.MethodPost, "/process/start", bytes.NewReader(data))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessStart_ConflictWhileRunning(t *testing.T) {
	srv := newTestServer()
	mux := newTestMux(srv)

	gate := make(chan struct{})
	entered := make(chan struct{})
	srv.Runner().AddCallback(batch.FuncProgressCallback{
		Start: func(total int) {
			close(entered)
			<-gate
		},
	})

	body, _ := jobConfigBody(t, 1)
	req := httptest.NewRequest(http.MethodPost, "/process/start", body)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)
	<-entered

	second, _ := jobConfigBody(t, 1)
	req = httptest.NewRequest(http.MethodPost, "/process/start", second)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	close(gate)
	srv.Runner().Wait()
}

func TestProcessStatusAndCancel(t *testing.T) {
	srv := newTestServer()
	mux := newTestMux(srv)

	// Fresh server reports the idle state.
	req := httptest.NewRequest(http.MethodGet, "/process/status", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var status batch.Progress
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, batch.StateIdle, status.State)

	// Cancel with nothing running is a no-op.
	req = httptest.NewRequest(http.MethodPost, "/process/cancel", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var cancel CancelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancel))
	assert.False(t, cancel.Cancelled)
}

func TestPreviewHandler(t *testing.T) {
	mux := newTestMux(newTestServer())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	data, err := imageio.EncodePNG(testutil.CreateGradientImage(600, 400))
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("options", `{"saturation": 0, "border": {"thickness_px": 10, "color": "#000000"}}`))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/preview", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	// 620x420 after the border, fits within the 400px preview edge.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes()[:4])
}

func TestPreviewHandler_NoImage(t *testing.T) {
	mux := newTestMux(newTestServer())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/preview", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewHandler_BadOptions(t *testing.T) {
	mux := newTestMux(newTestServer())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	data, err := imageio.EncodePNG(testutil.CreateTestImage(10, 10, color.White))
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("options", `{"border": {"thickness_px": 5, "color": "nope"}}`))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/preview", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
