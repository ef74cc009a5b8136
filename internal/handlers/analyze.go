package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"resumatch-gateway/internal/analysis"
	"resumatch-gateway/internal/llm"
	"resumatch-gateway/pkg/logging/logging"

	"go.uber.org/zap"
)

// maxUploadBytes bounds the resume file read from the multipart form.
const maxUploadBytes = 10 << 20 // 10 MB

// ResumeAnalyzer is the pipeline as the HTTP layer sees it.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, doc []byte, jd string) (*analysis.Report, error)
}

// AnalyzeHandler holds dependencies for POST /check/analyze.
type AnalyzeHandler struct {
	Analyzer ResumeAnalyzer
}

func NewAnalyzeHandler(a ResumeAnalyzer) *AnalyzeHandler {
	return &AnalyzeHandler{Analyzer: a}
}

// errorResponse is the single caller-visible error envelope. Internal
// distinctions stay in the logs.
type errorResponse struct {
	Error string `json:"error"`
}

// Analyze handles POST /check/analyze: multipart form with the resume
// under "file" and the job description under "jd".
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	logger.Info("analyze request started")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid multipart form", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("missing file field", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	doc, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		logger.Warn("reading upload failed", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	if len(doc) == 0 {
		h.writeError(w, http.StatusBadRequest, "empty file")
		return
	}

	jd := r.FormValue("jd")

	logger.Info("analyze request accepted",
		zap.String("filename", header.Filename),
		zap.Int("file_bytes", len(doc)),
		zap.Int("jd_chars", len(jd)),
	)

	report, err := h.Analyzer.Analyze(ctx, doc, jd)
	if err != nil {
		h.respondError(w, logger, err)
		return
	}

	logger.Info("analyze request completed",
		zap.Bool("cache_hit", report.Cached),
		zap.Int("match_score", report.MatchScore),
		zap.Duration("total_latency_ms", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, report)
}

// respondError collapses the internal error taxonomy into the
// {"error": ...} envelope with a client/server status split.
func (h *AnalyzeHandler) respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, analysis.ErrEmptyDocument):
		h.writeError(w, http.StatusBadRequest, "empty file")
	case errors.Is(err, analysis.ErrUnreadableDocument):
		logger.Warn("unreadable document", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "could not extract text from PDF, please check the file")
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Error("analysis service misconfigured", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "analysis service is not configured")
	case errors.Is(err, analysis.ErrMalformedOutput):
		logger.Error("malformed model output", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "analysis produced unusable output")
	default:
		logger.Error("analysis failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

func (h *AnalyzeHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *AnalyzeHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
