package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Catalog handlers — browsing tasks, daily challenge sets and achievements

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.catalog.Tasks()

	if dayStr := r.URL.Query().Get("day"); dayStr != "" {
		day, err := strconv.Atoi(dayStr)
		if err != nil || day < 1 {
			respondError(w, http.StatusBadRequest, "validation_error", "day must be a positive integer")
			return
		}
		tasks = s.catalog.TasksForDay(day)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "task id is required")
		return
	}
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}

	task := s.catalog.Resolve(id)
	if task == nil {
		respondError(w, http.StatusNotFound, "not_found", "task not found")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
	days := s.catalog.Days()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":  days,
		"total": len(days),
	})
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 {
		respondError(w, http.StatusBadRequest, "validation_error", "day must be a positive integer")
		return
	}

	set := s.catalog.Day(day)
	if set == nil {
		respondError(w, http.StatusNotFound, "not_found", "no challenge set for requested day")
		return
	}

	respondJSON(w, http.StatusOK, set)
}

func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	achievements := s.catalog.Achievements()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": achievements,
		"total":        len(achievements),
	})
}
