package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"roomsync/internal/model"
	"roomsync/internal/store"
)

type SwapHandler struct {
	swapStore       *store.SwapStore
	choreStore      *store.ChoreStore
	assignmentStore *store.AssignmentStore
	membershipStore *store.MembershipStore
	logger          *slog.Logger
}

func NewSwapHandler(ss *store.SwapStore, cs *store.ChoreStore, as *store.AssignmentStore, ms *store.MembershipStore, logger *slog.Logger) *SwapHandler {
	return &SwapHandler{
		swapStore:       ss,
		choreStore:      cs,
		assignmentStore: as,
		membershipStore: ms,
		logger:          logger,
	}
}

// Propose opens a swap for the chore in the path. Only a currently assigned
// member can shop their chore around, though they may have several pending
// proposals to different targets at once.
func (h *SwapHandler) Propose(w http.ResponseWriter, r *http.Request) {
	choreID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	c, err := h.choreStore.GetByID(choreID)
	if err != nil {
		writeError(w, err, "failed to get chore")
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return
	}

	membership, ok := resolveMember(w, r, h.membershipStore, c.RoomID)
	if !ok {
		return
	}

	assigned, err := h.assignmentStore.IsAssigned(choreID, membership.ID)
	if err != nil {
		writeError(w, err, "failed to check assignment")
		return
	}
	if !assigned {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "you are not assigned to this chore"})
		return
	}

	var req struct {
		ToMembership int64  `json:"to_membership"`
		Message      string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	target, err := h.membershipStore.Get(req.ToMembership)
	if err != nil {
		writeError(w, err, "failed to get membership")
		return
	}
	if target != nil && target.RoomID != c.RoomID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "membership not found in this room"})
		return
	}

	swap, err := h.swapStore.Propose(choreID, membership.ID, req.ToMembership, req.Message)
	if err != nil {
		writeError(w, err, "failed to propose swap")
		return
	}

	h.logger.Info("swap proposed",
		"swap_id", swap.ID,
		"chore_id", choreID,
		"from", membership.ID,
		"to", req.ToMembership,
	)
	writeJSON(w, http.StatusCreated, swap)
}

// loadSwap fetches the swap and the caller's membership in the chore's room.
func (h *SwapHandler) loadSwap(w http.ResponseWriter, r *http.Request) (*model.SwapRequest, *model.Membership, bool) {
	swapID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, nil, false
	}

	swap, err := h.swapStore.GetByID(swapID)
	if err != nil {
		writeError(w, err, "failed to get swap request")
		return nil, nil, false
	}
	if swap == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "swap request not found"})
		return nil, nil, false
	}

	c, err := h.choreStore.GetByID(swap.ChoreID)
	if err != nil || c == nil {
		writeError(w, err, "failed to get chore")
		return nil, nil, false
	}

	membership, ok := resolveMember(w, r, h.membershipStore, c.RoomID)
	if !ok {
		return nil, nil, false
	}
	return swap, membership, true
}

// Respond accepts or declines a pending swap. Only the proposal's target
// may answer it.
func (h *SwapHandler) Respond(w http.ResponseWriter, r *http.Request) {
	swap, membership, ok := h.loadSwap(w, r)
	if !ok {
		return
	}

	if swap.ToMembership != membership.ID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the swap target may respond"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	updated, err := h.swapStore.Respond(swap.ID, req.Status)
	if err != nil {
		writeError(w, err, "failed to respond to swap")
		return
	}

	h.logger.Info("swap responded", "swap_id", swap.ID, "status", updated.Status)
	writeJSON(w, http.StatusOK, updated)
}

func (h *SwapHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	swap, membership, ok := h.loadSwap(w, r)
	if !ok {
		return
	}

	if err := h.swapStore.Cancel(swap.ID, membership.ID); err != nil {
		writeError(w, err, "failed to cancel swap")
		return
	}

	h.logger.Info("swap cancelled", "swap_id", swap.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *SwapHandler) ListByRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	swaps, err := h.swapStore.ListByRoom(roomID)
	if err != nil {
		writeError(w, err, "failed to list swaps")
		return
	}
	if swaps == nil {
		swaps = []model.SwapRequestWithDetails{}
	}
	writeJSON(w, http.StatusOK, swaps)
}

// Inbox lists pending proposals waiting on the caller in this room.
func (h *SwapHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	membership, ok := resolveMember(w, r, h.membershipStore, roomID)
	if !ok {
		return
	}

	swaps, err := h.swapStore.ListPendingFor(membership.ID)
	if err != nil {
		writeError(w, err, "failed to list swaps")
		return
	}
	if swaps == nil {
		swaps = []model.SwapRequestWithDetails{}
	}
	writeJSON(w, http.StatusOK, swaps)
}
