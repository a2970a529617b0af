package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CosmoBean/simplysecure/internal/permissions"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ready(r.Context()); err != nil {
			slog.Warn("readiness check failed", "error", err)
			respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Permission classification handlers

func (s *Server) handleListClassifications(w http.ResponseWriter, r *http.Request) {
	all := permissions.All()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"permissions": all,
		"total":       len(all),
	})
}

func (s *Server) handleClassifyPermission(w http.ResponseWriter, r *http.Request) {
	permType := chi.URLParam(r, "type")
	if permType == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "permission type is required")
		return
	}

	classification, err := permissions.ClassifyString(permType)
	if err != nil {
		if errors.Is(err, permissions.ErrUnknownPermission) {
			respondError(w, http.StatusNotFound, "not_found", "unknown permission type: "+permType)
			return
		}
		slog.Error("failed to classify permission", "error", err, "type", permType)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to classify permission")
		return
	}

	respondJSON(w, http.StatusOK, classification)
}
