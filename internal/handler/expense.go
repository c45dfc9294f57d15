package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"roomsync/internal/model"
	"roomsync/internal/store"
)

type ExpenseHandler struct {
	expenseStore    *store.ExpenseStore
	membershipStore *store.MembershipStore
	logger          *slog.Logger
}

func NewExpenseHandler(es *store.ExpenseStore, ms *store.MembershipStore, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseStore:    es,
		membershipStore: ms,
		logger:          logger,
	}
}

type splitRequest struct {
	MembershipID int64 `json:"membership_id"`
	AmountCents  int64 `json:"amount_cents"`
}

// Create records an expense paid by the caller. With no explicit splits the
// amount is divided evenly across the room's active members, remainder cents
// going to the earliest joiners.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
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
		Description string         `json:"description"`
		AmountCents int64          `json:"amount_cents"`
		Splits      []splitRequest `json:"splits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	splits := make([]store.Split, 0, len(req.Splits))
	for _, sp := range req.Splits {
		m, err := h.membershipStore.Get(sp.MembershipID)
		if err != nil {
			writeError(w, err, "failed to get membership")
			return
		}
		if m == nil || m.RoomID != roomID {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "membership not found in this room"})
			return
		}
		splits = append(splits, store.Split{MembershipID: sp.MembershipID, AmountCents: sp.AmountCents})
	}

	if len(splits) == 0 && req.AmountCents > 0 {
		members, err := h.membershipStore.ListByRoom(roomID)
		if err != nil {
			writeError(w, err, "failed to list members")
			return
		}
		splits = evenSplits(req.AmountCents, members)
	}

	expense, err := h.expenseStore.Create(roomID, membership.ID, strings.TrimSpace(req.Description), req.AmountCents, splits)
	if err != nil {
		writeError(w, err, "failed to create expense")
		return
	}

	h.logger.Info("expense created", "expense_id", expense.ID, "room_id", roomID, "amount_cents", expense.AmountCents)
	writeJSON(w, http.StatusCreated, expense)
}

func evenSplits(amountCents int64, members []model.MembershipWithUser) []store.Split {
	n := int64(len(members))
	if n == 0 {
		return nil
	}
	base := amountCents / n
	remainder := amountCents % n

	splits := make([]store.Split, 0, n)
	for i, m := range members {
		share := base
		if int64(i) < remainder {
			share++
		}
		splits = append(splits, store.Split{MembershipID: m.ID, AmountCents: share})
	}
	return splits
}

func (h *ExpenseHandler) ListByRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	expenses, err := h.expenseStore.ListByRoom(roomID)
	if err != nil {
		writeError(w, err, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []model.ExpenseWithSplits{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) SettleSplit(w http.ResponseWriter, r *http.Request) {
	splitID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.expenseStore.SettleSplit(splitID); err != nil {
		writeError(w, err, "failed to settle split")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "settled"})
}
