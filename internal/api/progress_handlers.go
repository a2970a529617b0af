package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CosmoBean/simplysecure/internal/models"
	"github.com/CosmoBean/simplysecure/internal/progression"
)

// Progression handlers

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "user id is required")
		return
	}

	overview, err := s.engine.Progress(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load progress", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load progress")
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	taskRef := chi.URLParam(r, "taskId")

	taskID, ok := s.resolveTaskRef(w, taskRef)
	if !ok {
		return
	}

	progress, err := s.engine.Start(r.Context(), userID, taskID)
	if err != nil {
		s.respondEngineError(w, err, userID, taskRef, "start")
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

type completeRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	taskRef := chi.URLParam(r, "taskId")

	taskID, ok := s.resolveTaskRef(w, taskRef)
	if !ok {
		return
	}

	var req completeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}

	result, err := s.engine.Complete(r.Context(), userID, taskID, req.Notes)
	if err != nil {
		s.respondEngineError(w, err, userID, taskRef, "complete")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleVerifyTask(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	taskRef := chi.URLParam(r, "taskId")

	taskID, ok := s.resolveTaskRef(w, taskRef)
	if !ok {
		return
	}

	result, err := s.engine.Verify(r.Context(), userID, taskID)
	if err != nil {
		s.respondEngineError(w, err, userID, taskRef, "verify")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// resolveTaskRef translates a URL task reference, ID first then title,
// into a catalog ID. The engine itself only speaks IDs. Writes a 404
// and returns false when the reference matches nothing.
func (s *Server) resolveTaskRef(w http.ResponseWriter, ref string) (string, bool) {
	// Titles contain spaces, so the path segment may still be escaped.
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}

	task := s.catalog.Resolve(ref)
	if task == nil {
		respondError(w, http.StatusNotFound, "task_not_found", "task not found: "+ref)
		return "", false
	}
	return task.ID, true
}

// respondEngineError maps progression sentinel errors to HTTP status codes.
func (s *Server) respondEngineError(w http.ResponseWriter, err error, userID, taskID, op string) {
	switch {
	case errors.Is(err, progression.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "task_not_found", "task not found: "+taskID)
	case errors.Is(err, progression.ErrNotStarted):
		respondError(w, http.StatusConflict, "not_started", "task has not been started")
	case errors.Is(err, progression.ErrNotCompleted):
		respondError(w, http.StatusConflict, "not_completed", "task has not been completed")
	case errors.Is(err, progression.ErrAlreadyCompleted):
		respondError(w, http.StatusConflict, "already_completed", "task is already completed")
	default:
		slog.Error("progression operation failed", "error", err, "op", op, "user_id", userID, "task_id", taskID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+op+" task")
	}
}

// Admin handlers

func (s *Server) handleResetXP(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if err := s.engine.ResetXP(r.Context(), userID); err != nil {
		slog.Error("failed to reset xp", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to reset xp")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "xp reset",
	})
}

type setLevelRequest struct {
	Level string `json:"level"`
}

func (s *Server) handleSetLevel(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req setLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	level, ok := models.ParseLevel(req.Level)
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "unknown level: "+req.Level)
		return
	}

	if err := s.engine.SetLevel(r.Context(), userID, level); err != nil {
		slog.Error("failed to set level", "error", err, "user_id", userID, "level", level)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to set level")
		return
	}

	overview, err := s.engine.Progress(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load progress after level change", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load progress")
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// Leaderboard handler

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.board == nil {
		respondError(w, http.StatusNotImplemented, "leaderboard_disabled", "leaderboard is not enabled")
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	entries, err := s.board.Top(r.Context(), limit)
	if err != nil {
		slog.Error("failed to load leaderboard", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load leaderboard")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}
