package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/MeKo-Tech/photoflow/internal/batch"
	"github.com/MeKo-Tech/photoflow/internal/imageio"
	"github.com/MeKo-Tech/photoflow/internal/transform"
	"github.com/MeKo-Tech/photoflow/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// formatsHandler returns the supported image file extensions.
func (s *Server) formatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	exts := append([]string(nil), imageio.SupportedExtensions...)
	s.writeJSON(w, http.StatusOK, FormatsResponse{
		Extensions: exts,
		Count:      len(exts),
	})
}

// discoverHandler lists the supported images in a folder.
func (s *Server) discoverHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		s.writeErrorResponse(w, "Missing folder parameter", http.StatusBadRequest)
		return
	}

	files, err := batch.DiscoverImages(folder)
	if err != nil {
		var nf *batch.NotFoundError
		if errors.As(err, &nf) {
			s.writeErrorResponse(w, err.Error(), http.StatusNotFound)
			return
		}
		s.writeErrorResponse(w, fmt.Sprintf("Failed to scan folder: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, DiscoverResponse{
		Folder: folder,
		Files:  files,
		Count:  len(files),
	})
}

// validateHandler checks a job configuration without starting a run.
func (s *Server) validateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, ok := s.decodeJobConfig(w, r)
	if !ok {
		return
	}

	problems := cfg.Validate()
	s.writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:    len(problems) == 0,
		Problems: problems,
	})
}

// processStartHandler launches a batch run in the background.
func (s *Server) processStartHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, ok := s.decodeJobConfig(w, r)
	if !ok {
		return
	}

	if err := s.runner.Start(cfg); err != nil {
		if errors.Is(err, batch.ErrAlreadyRunning) {
			s.writeErrorResponse(w, err.Error(), http.StatusConflict)
			return
		}
		var ve *batch.ValidationError
		if errors.As(err, &ve) {
			s.writeErrorResponse(w, ve.Error(), http.StatusBadRequest)
			return
		}
		s.writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	runsStarted.Inc()
	s.writeJSON(w, http.StatusAccepted, StartResponse{Started: true})
}

// processCancelHandler requests cancellation of the current run. The
// request succeeds even when no run is active.
func (s *Server) processCancelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	wasRunning := s.runner.IsRunning()
	s.runner.Cancel()

	s.writeJSON(w, http.StatusOK, CancelResponse{
		Cancelled: wasRunning,
		State:     s.runner.Snapshot().State,
	})
}

// processStatusHandler returns the current progress snapshot.
func (s *Server) processStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, s.runner.Snapshot())
}

// previewHandler applies the job transforms to an uploaded image and
// returns a downscaled PNG rendering.
func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	uploadSizeBytes.Observe(float64(header.Size))

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	opts := transform.DefaultOptions()
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("Invalid options: %v", err), http.StatusBadRequest)
			return
		}
	}

	engine, err := transform.NewEngine(opts)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Invalid transform options: %v", err), http.StatusBadRequest)
		return
	}

	result, err := engine.Apply(img)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Preview failed: %v", err), http.StatusUnprocessableEntity)
		return
	}
	result = imageio.FitPreview(result, s.previewMaxEdge)

	data, err := imageio.EncodePNG(result)
	if err != nil {
		s.writeErrorResponse(w, "Failed to encode preview", http.StatusInternalServerError)
		return
	}

	previewsTotal.Inc()
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing preview response: %v\n", err)
	}
}

// decodeJobConfig reads a batch configuration from the request body.
// Missing fields keep their defaults.
func (s *Server) decodeJobConfig(w http.ResponseWriter, r *http.Request) (batch.Config, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	cfg := batch.DefaultConfig()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return batch.Config{}, false
	}
	return cfg, true
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding response: %v\n", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error:   message,
	})
}
