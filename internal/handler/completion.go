package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"roomsync/internal/model"
	"roomsync/internal/store"
)

type CompletionHandler struct {
	completionStore *store.CompletionStore
	choreStore      *store.ChoreStore
	membershipStore *store.MembershipStore
	logger          *slog.Logger
}

func NewCompletionHandler(cs *store.CompletionStore, chs *store.ChoreStore, ms *store.MembershipStore, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{
		completionStore: cs,
		choreStore:      chs,
		membershipStore: ms,
		logger:          logger,
	}
}

// Submit records a completion for the chore in the path. Chores without
// approval required are credited immediately; the rest wait for a verifier.
func (h *CompletionHandler) Submit(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		PhotoURL *string `json:"photo_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	completion, err := h.completionStore.Submit(choreID, membership.ID, req.PhotoURL)
	if err != nil {
		writeError(w, err, "failed to submit completion")
		return
	}

	h.logger.Info("completion submitted",
		"completion_id", completion.ID,
		"chore_id", choreID,
		"status", completion.Status,
	)
	writeJSON(w, http.StatusCreated, completion)
}

func (h *CompletionHandler) ListByChore(w http.ResponseWriter, r *http.Request) {
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
	if _, ok := resolveMember(w, r, h.membershipStore, c.RoomID); !ok {
		return
	}

	completions, err := h.completionStore.ListByChore(choreID)
	if err != nil {
		writeError(w, err, "failed to list completions")
		return
	}
	if completions == nil {
		completions = []model.Completion{}
	}
	writeJSON(w, http.StatusOK, completions)
}

// Verify resolves a pending completion. The store enforces that the
// verifier is someone other than the submitter and that only the first
// verdict lands.
func (h *CompletionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	completionID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	completion, err := h.completionStore.GetByID(completionID)
	if err != nil {
		writeError(w, err, "failed to get completion")
		return
	}
	if completion == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "completion not found"})
		return
	}

	c, err := h.choreStore.GetByID(completion.ChoreID)
	if err != nil || c == nil {
		writeError(w, err, "failed to get chore")
		return
	}

	membership, ok := resolveMember(w, r, h.membershipStore, c.RoomID)
	if !ok {
		return
	}

	var req struct {
		Outcome string `json:"outcome"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	verification, err := h.completionStore.Verify(completionID, membership.ID, req.Outcome, req.Comment)
	if err != nil {
		writeError(w, err, "failed to verify completion")
		return
	}

	h.logger.Info("completion verified",
		"completion_id", completionID,
		"outcome", req.Outcome,
		"verified_by", membership.ID,
	)
	writeJSON(w, http.StatusCreated, verification)
}

func (h *CompletionHandler) ListPendingByRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	completions, err := h.completionStore.ListPendingByRoom(roomID)
	if err != nil {
		writeError(w, err, "failed to list pending completions")
		return
	}
	if completions == nil {
		completions = []model.Completion{}
	}
	writeJSON(w, http.StatusOK, completions)
}
