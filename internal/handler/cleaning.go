package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"roomsync/internal/model"
	"roomsync/internal/store"
)

type CleaningHandler struct {
	cleaningStore   *store.CleaningStore
	membershipStore *store.MembershipStore
	logger          *slog.Logger
}

func NewCleaningHandler(cs *store.CleaningStore, ms *store.MembershipStore, logger *slog.Logger) *CleaningHandler {
	return &CleaningHandler{
		cleaningStore:   cs,
		membershipStore: ms,
		logger:          logger,
	}
}

func (h *CleaningHandler) Create(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
		Area string `json:"area"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	t, err := h.cleaningStore.Create(roomID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Area))
	if err != nil {
		writeError(w, err, "failed to create cleaning task")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *CleaningHandler) ListByRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	tasks, err := h.cleaningStore.ListByRoom(roomID)
	if err != nil {
		writeError(w, err, "failed to list cleaning tasks")
		return
	}
	if tasks == nil {
		tasks = []model.CleaningTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *CleaningHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	t, err := h.cleaningStore.GetByID(id)
	if err != nil {
		writeError(w, err, "failed to get cleaning task")
		return
	}
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cleaning task not found"})
		return
	}

	membership, ok := resolveMember(w, r, h.membershipStore, t.RoomID)
	if !ok {
		return
	}

	updated, err := h.cleaningStore.Toggle(id, membership.ID)
	if err != nil {
		writeError(w, err, "failed to toggle cleaning task")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CleaningHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	t, err := h.cleaningStore.GetByID(id)
	if err != nil {
		writeError(w, err, "failed to get cleaning task")
		return
	}
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cleaning task not found"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, t.RoomID); !ok {
		return
	}

	if err := h.cleaningStore.Delete(id); err != nil {
		writeError(w, err, "failed to delete cleaning task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
