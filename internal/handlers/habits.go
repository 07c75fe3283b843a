package handlers

import (
	"net/http"

	"github.com/nevroth/nevroth/internal/habits"
	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/models"
)

type HabitHandler struct {
	Habits *habits.Service
	Logger logging.Logger
}

func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	list, err := h.Habits.ListHabits(r.Context())
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *HabitHandler) SelectHabits(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	var req struct {
		HabitIDs []int64 `json:"habits_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	if err := h.Habits.SelectHabits(r.Context(), userID, req.HabitIDs); err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"detail": "Habits updated successfully"})
}

func (h *HabitHandler) MyHabits(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	list, err := h.Habits.MyHabits(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *HabitHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	var req struct {
		Habit  int64                 `json:"habit"`
		Status models.ProgressStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	entry, err := h.Habits.RecordProgress(r.Context(), userID, req.Habit, req.Status)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (h *HabitHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	entries, err := h.Habits.ListProgress(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// Streaks handles GET /habits/{habit_id}/streaks.
func (h *HabitHandler) Streaks(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	habitID, err := pathID(r, "habit_id")
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	result, err := h.Habits.Streaks(r.Context(), userID, habitID)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
