package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"roomsync/internal/model"
	"roomsync/internal/store"
)

type AnnouncementHandler struct {
	announcementStore *store.AnnouncementStore
	membershipStore   *store.MembershipStore
	logger            *slog.Logger
}

func NewAnnouncementHandler(as *store.AnnouncementStore, ms *store.MembershipStore, logger *slog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementStore: as,
		membershipStore:   ms,
		logger:            logger,
	}
}

func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	membership, ok := resolveMember(w, r, h.membershipStore, roomID)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	a, err := h.announcementStore.Create(roomID, membership.ID, strings.TrimSpace(req.Title), req.Body)
	if err != nil {
		writeError(w, err, "failed to create announcement")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AnnouncementHandler) ListByRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	announcements, err := h.announcementStore.ListByRoom(roomID)
	if err != nil {
		writeError(w, err, "failed to list announcements")
		return
	}
	if announcements == nil {
		announcements = []model.Announcement{}
	}
	writeJSON(w, http.StatusOK, announcements)
}

func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	a, err := h.announcementStore.GetByID(id)
	if err != nil {
		writeError(w, err, "failed to get announcement")
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "announcement not found"})
		return
	}

	membership, ok := resolveMember(w, r, h.membershipStore, a.RoomID)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	updated, err := h.announcementStore.Update(id, membership.ID, strings.TrimSpace(req.Title), req.Body)
	if err != nil {
		writeError(w, err, "failed to update announcement")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes an announcement. The author always can; a room admin can
// remove anyone's.
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	a, err := h.announcementStore.GetByID(id)
	if err != nil {
		writeError(w, err, "failed to get announcement")
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "announcement not found"})
		return
	}

	membership, ok := resolveMember(w, r, h.membershipStore, a.RoomID)
	if !ok {
		return
	}
	if a.MembershipID != membership.ID && membership.Role != model.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the author or an admin may delete an announcement"})
		return
	}

	if err := h.announcementStore.Delete(id); err != nil {
		writeError(w, err, "failed to delete announcement")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
