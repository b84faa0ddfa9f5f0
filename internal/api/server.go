// Package api serves the resolved frame set over HTTP as JSON, alongside the
// health probes and Prometheus metrics.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gizatt/skybox/internal/frame"
	"github.com/gizatt/skybox/internal/health"
	"github.com/gizatt/skybox/internal/httputil"
	"github.com/gizatt/skybox/internal/metrics"
)

// FrameSource is the read side of the frame service.
type FrameSource interface {
	Frames() []frame.Frame
	UpdatedAt() time.Time
	Ready() bool
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	frames     FrameSource
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, frames FrameSource, logger *slog.Logger) *Server {
	s := &Server{frames: frames, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(frames.Ready))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/frames", s.handleFrames)
	mux.HandleFunc("GET /api/v1/frames/{id}", s.handleFrame)

	// Middleware chain: metrics -> logging -> mux.
	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// frameJSON is the wire form of one frame. Image bytes stay out of the API;
// clients fetch pixels from the upstream URL themselves.
type frameJSON struct {
	SatelliteID    string    `json:"satellite_id"`
	ImageURL       string    `json:"image_url"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Aspect         float64   `json:"aspect"`
	Timestamp      time.Time `json:"timestamp"`
	PositionECEFM  ecefJSON  `json:"position_ecef_m"`
	FieldOfViewDeg float64   `json:"field_of_view_deg"`
	ExpectedFOVDeg float64   `json:"expected_field_of_view_deg"`
}

type ecefJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type framesResponse struct {
	UpdatedAt time.Time   `json:"updated_at"`
	Frames    []frameJSON `json:"frames"`
}

func toFrameJSON(f frame.Frame) frameJSON {
	return frameJSON{
		SatelliteID: f.SatelliteID,
		ImageURL:    f.ImageURL,
		Width:       f.Width,
		Height:      f.Height,
		Aspect:      f.Aspect,
		Timestamp:   f.Timestamp,
		PositionECEFM: ecefJSON{
			X: f.PositionECEF.X,
			Y: f.PositionECEF.Y,
			Z: f.PositionECEF.Z,
		},
		FieldOfViewDeg: f.FieldOfViewDeg,
		ExpectedFOVDeg: frame.ExpectedFieldOfView(f.PositionECEF),
	}
}

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	frames := s.frames.Frames()
	resp := framesResponse{
		UpdatedAt: s.frames.UpdatedAt(),
		Frames:    make([]frameJSON, 0, len(frames)),
	}
	for _, f := range frames {
		resp.Frames = append(resp.Frames, toFrameJSON(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, f := range s.frames.Frames() {
		if f.SatelliteID == id {
			writeJSON(w, http.StatusOK, toFrameJSON(f))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "no frame for satellite " + id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, false),
			)
		})
	}
}
