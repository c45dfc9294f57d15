package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"roomsync/internal/chore"
	"roomsync/internal/model"
	"roomsync/internal/store"
)

type ChoreHandler struct {
	choreStore      *store.ChoreStore
	assignmentStore *store.AssignmentStore
	membershipStore *store.MembershipStore
	logger          *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, as *store.AssignmentStore, ms *store.MembershipStore, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{
		choreStore:      cs,
		assignmentStore: as,
		membershipStore: ms,
		logger:          logger,
	}
}

type choreRequest struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Frequency        string     `json:"frequency"`
	FrequencyValue   *int       `json:"frequency_value"`
	DayOfWeek        *int       `json:"day_of_week"`
	Timing           string     `json:"timing"`
	StartDate        *time.Time `json:"start_date"`
	ApprovalRequired bool       `json:"approval_required"`
	PhotoRequired    bool       `json:"photo_required"`
	IsActive         *bool      `json:"is_active"`
}

func (req *choreRequest) params() store.ChoreParams {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return store.ChoreParams{
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		Frequency:        req.Frequency,
		FrequencyValue:   req.FrequencyValue,
		DayOfWeek:        req.DayOfWeek,
		Timing:           req.Timing,
		StartDate:        req.StartDate,
		ApprovalRequired: req.ApprovalRequired,
		PhotoRequired:    req.PhotoRequired,
		IsActive:         active,
	}
}

// choreView is a chore decorated with its computed due status and the
// current assignees, the shape every listing returns.
type choreView struct {
	model.Chore
	DueStatus chore.Status     `json:"due_status"`
	Assignees []model.Assignee `json:"assignees"`
}

func (h *ChoreHandler) view(c model.Chore, now time.Time) (choreView, error) {
	assignees, err := h.assignmentStore.ListActive(c.ID)
	if err != nil {
		return choreView{}, err
	}
	if assignees == nil {
		assignees = []model.Assignee{}
	}
	return choreView{
		Chore:     c,
		DueStatus: chore.ComputeStatus(c.Frequency, c.LastCompleted, now),
		Assignees: assignees,
	}, nil
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	c, err := h.choreStore.Create(roomID, req.params())
	if err != nil {
		writeError(w, err, "failed to create chore")
		return
	}

	h.logger.Info("chore created", "chore_id", c.ID, "room_id", roomID)
	v, err := h.view(*c, time.Now())
	if err != nil {
		writeError(w, err, "failed to load chore")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *ChoreHandler) ListByRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	chores, err := h.choreStore.ListByRoom(roomID)
	if err != nil {
		writeError(w, err, "failed to list chores")
		return
	}

	now := time.Now()
	views := make([]choreView, 0, len(chores))
	for _, c := range chores {
		v, err := h.view(c, now)
		if err != nil {
			writeError(w, err, "failed to load chores")
			return
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// loadChore fetches the chore and checks the caller's membership in its
// room, writing the error response on any failure.
func (h *ChoreHandler) loadChore(w http.ResponseWriter, r *http.Request) (*model.Chore, *model.Membership, bool) {
	choreID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, nil, false
	}

	c, err := h.choreStore.GetByID(choreID)
	if err != nil {
		writeError(w, err, "failed to get chore")
		return nil, nil, false
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return nil, nil, false
	}

	membership, ok := resolveMember(w, r, h.membershipStore, c.RoomID)
	if !ok {
		return nil, nil, false
	}
	return c, membership, true
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.loadChore(w, r)
	if !ok {
		return
	}
	v, err := h.view(*c, time.Now())
	if err != nil {
		writeError(w, err, "failed to load chore")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.loadChore(w, r)
	if !ok {
		return
	}

	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	updated, err := h.choreStore.Update(c.ID, req.params())
	if err != nil {
		writeError(w, err, "failed to update chore")
		return
	}

	v, err := h.view(*updated, time.Now())
	if err != nil {
		writeError(w, err, "failed to load chore")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.loadChore(w, r)
	if !ok {
		return
	}

	if err := h.choreStore.Delete(c.ID); err != nil {
		writeError(w, err, "failed to delete chore")
		return
	}
	h.logger.Info("chore deleted", "chore_id", c.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ChoreHandler) Assign(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.loadChore(w, r)
	if !ok {
		return
	}

	var req struct {
		MembershipID int64 `json:"membership_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	target, err := h.membershipStore.Get(req.MembershipID)
	if err != nil {
		writeError(w, err, "failed to get membership")
		return
	}
	if target == nil || target.RoomID != c.RoomID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "membership not found in this room"})
		return
	}

	a, err := h.assignmentStore.Assign(c.ID, req.MembershipID)
	if err != nil {
		writeError(w, err, "failed to assign chore")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *ChoreHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.loadChore(w, r)
	if !ok {
		return
	}
	memberID, err := parsePathInt(r, "memberID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member id"})
		return
	}

	if err := h.assignmentStore.Unassign(c.ID, memberID); err != nil {
		writeError(w, err, "failed to unassign chore")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unassigned"})
}

// ReplaceAssignees swaps the full assignee set in one transaction.
func (h *ChoreHandler) ReplaceAssignees(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.loadChore(w, r)
	if !ok {
		return
	}

	var req struct {
		MembershipIDs []int64 `json:"membership_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	for _, id := range req.MembershipIDs {
		m, err := h.membershipStore.Get(id)
		if err != nil {
			writeError(w, err, "failed to get membership")
			return
		}
		if m == nil || m.RoomID != c.RoomID {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "membership not found in this room"})
			return
		}
	}

	if err := h.assignmentStore.Replace(c.ID, req.MembershipIDs); err != nil {
		writeError(w, err, "failed to replace assignees")
		return
	}

	assignees, err := h.assignmentStore.ListActive(c.ID)
	if err != nil {
		writeError(w, err, "failed to list assignees")
		return
	}
	if assignees == nil {
		assignees = []model.Assignee{}
	}
	writeJSON(w, http.StatusOK, assignees)
}
