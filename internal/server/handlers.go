package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/sozercan/ollama-sentiment/apimodels"
)

const maxFormMemory = 1 << 20

var errMissingText = errors.New("text field is required")

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	slog.Info("Handling analyze request")

	text, err := readText(r)
	if err != nil {
		slog.Warn("Rejected analyze request", "error", err)
		status := http.StatusBadRequest
		if errors.Is(err, errMissingText) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, apimodels.ErrorResponse{Error: err.Error()})
		return
	}

	result := s.analyzer.Analyze(r.Context(), text)

	slog.Debug("Analysis request completed", "outcome", result.Outcome, "model", result.Model)
	if result.Pull != nil {
		slog.Info("Model download running in background", "model", result.Pull.Model, "started", result.Pull.Started)
	}

	writeJSON(w, http.StatusOK, apimodels.AnalysisResponse{Sentiment: result.Sentiment})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apimodels.HealthResponse{
		Status: "ok",
		Model:  s.analyzer.SelectedModel(),
	})
}

// readText accepts url-encoded and multipart forms, and JSON bodies of the
// form {"text": "..."}.
func readText(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var req apimodels.AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", errors.New("invalid JSON body")
		}
		if req.Text == nil {
			return "", errMissingText
		}
		return *req.Text, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return "", errors.New("invalid multipart form")
		}

	default:
		if err := r.ParseForm(); err != nil {
			return "", errors.New("invalid form body")
		}
	}

	values, ok := r.PostForm[apimodels.FormFieldText]
	if !ok || len(values) == 0 {
		return "", errMissingText
	}
	return values[0], nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
