package server

import (
	"net/http"

	"github.com/MeKo-Tech/photoflow/internal/batch"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	runner         *batch.Runner
	hub            *progressHub
	corsOrigin     string
	maxUploadMB    int64
	timeoutSec     int
	previewMaxEdge int
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	PreviewMaxEdge int
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type FormatsResponse struct {
	Extensions []string `json:"extensions"`
	Count      int      `json:"count"`
}

type DiscoverResponse struct {
	Folder string   `json:"folder"`
	Files  []string `json:"files"`
	Count  int      `json:"count"`
}

type ValidateResponse struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

type StartResponse struct {
	Started    bool `json:"started"`
	TotalFiles int  `json:"total_files,omitempty"`
}

type CancelResponse struct {
	Cancelled bool        `json:"cancelled"`
	State     batch.State `json:"state"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewServer creates a new batch processing server instance. Every
// progress update of the runner is forwarded to connected WebSocket
// clients through the broadcast hub.
func NewServer(config Config) *Server {
	s := &Server{
		runner:         batch.NewRunner(),
		hub:            newProgressHub(),
		corsOrigin:     config.CORSOrigin,
		maxUploadMB:    config.MaxUploadMB,
		timeoutSec:     config.TimeoutSec,
		previewMaxEdge: config.PreviewMaxEdge,
	}
	s.runner.AddCallback(batch.FuncProgressCallback{
		File:     s.hub.broadcast,
		Complete: s.hub.broadcast,
	})
	return s
}

// Runner exposes the underlying batch runner, mainly for tests.
func (s *Server) Runner() *batch.Runner {
	return s.runner
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/formats", s.corsMiddleware(s.formatsHandler))
	mux.HandleFunc("/discover", s.corsMiddleware(s.discoverHandler))
	mux.HandleFunc("/validate", s.corsMiddleware(s.validateHandler))
	mux.HandleFunc("/process/start", s.corsMiddleware(s.processStartHandler))
	mux.HandleFunc("/process/cancel", s.corsMiddleware(s.processCancelHandler))
	mux.HandleFunc("/process/status", s.corsMiddleware(s.processStatusHandler))
	mux.HandleFunc("/preview", s.corsMiddleware(s.previewHandler))
	mux.HandleFunc("/ws/progress", s.progressWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
