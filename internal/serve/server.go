// Package serve exposes the detection and analysis boundaries over HTTP,
// mirroring the message contracts the browser collaborators use.
package serve

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/termscan/internal/common"
	"github.com/dtnitsch/termscan/models"
	"github.com/dtnitsch/termscan/pkg/analyzer"
	"github.com/dtnitsch/termscan/pkg/detector"
	"github.com/dtnitsch/termscan/pkg/gemini"
)

const maxRequestBodyBytes = 4 << 20

// Server routes detect/analyze requests to the analysis pipeline.
type Server struct {
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
}

func New(a *analyzer.Analyzer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{analyzer: a, logger: logger}
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /api/detect", s.handleDetect)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	return mux
}

type detectRequest struct {
	Action   string `json:"action"`
	HTML     string `json:"html"`
	URL      string `json:"url"`
	Language string `json:"language"`
}

type analyzeRequest struct {
	Action   string `json:"action"`
	Content  string `json:"content"`
	Language string `json:"language"`
	URL      string `json:"url"`
}

type analyzeResponse struct {
	Success bool                   `json:"success"`
	Result  *models.AnalysisResult `json:"result,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// handleDetect never reports a failure past the boundary: anything that goes
// wrong degrades to a not-found result.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	notFound := models.DetectionResult{Found: false, Location: models.LocationNone}

	var req detectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusOK, notFound)
		return
	}
	if req.Action != "" && req.Action != "detectTerms" {
		writeJSON(w, http.StatusOK, notFound)
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	if err != nil {
		s.logger.Warn("detect request HTML unparseable", "error", err)
		writeJSON(w, http.StatusOK, notFound)
		return
	}

	writeJSON(w, http.StatusOK, detector.Detect(doc, req.URL))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, analyzeResponse{Success: false, Error: "invalid request body"})
		return
	}
	if req.Action != "" && req.Action != "analyzeTerms" {
		writeJSON(w, http.StatusBadRequest, analyzeResponse{Success: false, Error: "unknown action"})
		return
	}

	// The page URL is the natural key; content hash stands in when the
	// caller has none.
	pageKey := req.URL
	if pageKey == "" {
		pageKey = common.ContentHash([]byte(req.Content))
	}

	result, err := s.analyzer.Analyze(r.Context(), pageKey, req.Content, req.Language)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, analyzer.ErrContentTooShort):
			status = http.StatusBadRequest
		case errors.Is(err, analyzer.ErrOffline):
			status = http.StatusServiceUnavailable
		case errors.Is(err, gemini.ErrNoAPIKey):
			status = http.StatusInternalServerError
		}
		s.logger.Error("analyze request failed", "page_key", pageKey, "error", err)
		writeJSON(w, status, analyzeResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{Success: true, Result: &result})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
