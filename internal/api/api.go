// Package api provides the REST surface over the review pipeline.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joescharf/cra/internal/lang"
	"github.com/joescharf/cra/internal/models"
	"github.com/joescharf/cra/internal/review"
	"github.com/joescharf/cra/internal/store"
	"github.com/joescharf/cra/internal/summarize"
)

// maxUploadBytes caps the in-memory portion of a multipart upload.
const maxUploadBytes = 32 << 20

// Server provides the REST API handlers.
type Server struct {
	store  store.Store
	orch   *review.Orchestrator
	llmCfg summarize.Config
}

// NewServer creates a new API server.
func NewServer(s store.Store, orch *review.Orchestrator, llmCfg summarize.Config) *Server {
	return &Server{
		store:  s,
		orch:   orch,
		llmCfg: llmCfg,
	}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/reviews/upload", s.uploadReview)
	mux.HandleFunc("GET /api/v1/reviews", s.listReviews)
	mux.HandleFunc("GET /api/v1/reviews/{id}", s.getReview)
	mux.HandleFunc("DELETE /api/v1/reviews/{id}", s.deleteReview)
	mux.HandleFunc("GET /api/v1/reviews/{id}/export", s.exportReview)

	mux.HandleFunc("GET /api/v1/llm/status", s.llmStatus)

	mux.HandleFunc("GET /health", s.health)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Wire shapes ---

type fileOut struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	Language *string `json:"language"`
}

type issueOut struct {
	ID       string  `json:"id"`
	RuleID   string  `json:"rule_id"`
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
	Line     *int    `json:"line"`
	FileID   *string `json:"file_id"`
}

type reviewOut struct {
	ID        string     `json:"id"`
	CreatedAt string     `json:"created_at"`
	Summary   string     `json:"summary"`
	LLMUsed   bool       `json:"llm_used"`
	Files     []fileOut  `json:"files"`
	Issues    []issueOut `json:"issues"`
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func serializeReview(r *models.Review) reviewOut {
	out := reviewOut{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		Summary:   r.Summary,
		LLMUsed:   r.LLMUsed,
		Files:     make([]fileOut, 0, len(r.Files)),
		Issues:    make([]issueOut, 0, len(r.Issues)),
	}
	for _, f := range r.Files {
		out.Files = append(out.Files, fileOut{
			ID:       f.ID,
			Filename: f.Filename,
			Language: nilIfEmpty(f.Language),
		})
	}
	for _, issue := range r.Issues {
		out.Issues = append(out.Issues, issueOut{
			ID:       issue.ID,
			RuleID:   issue.RuleID,
			Severity: string(issue.Severity),
			Message:  issue.Message,
			Line:     issue.Line,
			FileID:   nilIfEmpty(issue.FileID),
		})
	}
	return out
}

// --- Reviews ---

func (s *Server) uploadReview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files received.")
		return
	}

	files := make([]review.FileInput, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload %s: %v", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload %s: %v", fh.Filename, err))
			return
		}
		files = append(files, review.FileInput{
			Filename: fh.Filename,
			Language: lang.Sniff(fh.Filename),
			Content:  lang.Decode(data),
		})
	}

	created, err := s.orch.AnalyzeReview(r.Context(), files)
	if err != nil {
		slog.Error("analyze review failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, serializeReview(created))
}

func (s *Server) getReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rev, err := s.store.GetReview(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "Review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, serializeReview(rev))
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.store.ListReviews(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]reviewOut, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, serializeReview(rev))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteReview(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "Review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) exportReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rev, err := s.store.GetReview(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "Review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=review-%s.json", rev.ID))
	writeJSON(w, http.StatusOK, serializeReview(rev))
}

// --- LLM status ---

func (s *Server) llmStatus(w http.ResponseWriter, r *http.Request) {
	baseURL := s.llmCfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	// The credential itself never leaves the server.
	writeJSON(w, http.StatusOK, map[string]any{
		"configured": s.llmCfg.Configured(),
		"base_url":   baseURL,
		"model":      s.llmCfg.Model,
	})
}

// --- Health ---

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
