package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"roomsync/internal/auth"
	"roomsync/internal/model"
	"roomsync/internal/store"
)

type RoomHandler struct {
	roomStore       *store.RoomStore
	membershipStore *store.MembershipStore
	invitationStore *store.InvitationStore
	teardownStore   *store.TeardownStore
	userStore       *store.UserStore
	logger          *slog.Logger
}

func NewRoomHandler(
	rs *store.RoomStore,
	ms *store.MembershipStore,
	is *store.InvitationStore,
	ts *store.TeardownStore,
	us *store.UserStore,
	logger *slog.Logger,
) *RoomHandler {
	return &RoomHandler{
		roomStore:       rs,
		membershipStore: ms,
		invitationStore: is,
		teardownStore:   ts,
		userStore:       us,
		logger:          logger,
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "room name is required"})
		return
	}

	room, membership, err := h.roomStore.Create(req.Name, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err, "failed to create room")
		return
	}

	h.logger.Info("room created", "room_id", room.ID, "code", room.RoomCode)
	writeJSON(w, http.StatusCreated, map[string]any{
		"room":       room,
		"membership": membership,
	})
}

func (h *RoomHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err, "failed to list rooms")
		return
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// Join adds the caller to a room by its share code. A returning member's
// deactivated membership is reactivated with history intact.
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomCode string `json:"room_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.RoomCode))
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "room_code is required"})
		return
	}

	room, err := h.roomStore.GetByCode(code)
	if err != nil {
		writeError(w, err, "failed to look up room")
		return
	}
	if room == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no room with that code"})
		return
	}

	userID := auth.UserID(r.Context())
	membership, err := h.membershipStore.Create(userID, room.ID, model.RoleMember)
	if err != nil {
		writeError(w, err, "failed to join room")
		return
	}

	// Resolve any invitation that was waiting on this email.
	if user, err := h.userStore.GetByID(userID); err == nil && user != nil {
		if err := h.invitationStore.MarkAccepted(room.ID, user.Email); err != nil {
			h.logger.Error("mark invitation accepted", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"room":       room,
		"membership": membership,
	})
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	room, err := h.roomStore.GetByID(roomID)
	if err != nil {
		writeError(w, err, "failed to get room")
		return
	}
	if room == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}

	members, err := h.membershipStore.ListByRoom(roomID)
	if err != nil {
		writeError(w, err, "failed to list members")
		return
	}
	if members == nil {
		members = []model.MembershipWithUser{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"room":    room,
		"members": members,
	})
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveAdmin(w, r, h.membershipStore, roomID); !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	room, err := h.roomStore.UpdateName(roomID, strings.TrimSpace(req.Name))
	if err != nil {
		writeError(w, err, "failed to update room")
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// Delete tears the room down. Admins destroy the whole room; for a plain
// member the call degrades to leaving it.
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	membership, ok := resolveMember(w, r, h.membershipStore, roomID)
	if !ok {
		return
	}

	result, err := h.teardownStore.DestroyRoom(roomID, membership.ID, membership.Role == model.RoleAdmin)
	if err != nil {
		writeError(w, err, "failed to delete room")
		return
	}

	h.logger.Info("room teardown", "room_id", roomID, "room_deleted", result.RoomDeleted)
	writeJSON(w, http.StatusOK, result)
}

// Leave removes the caller's membership. The last member out deletes the
// room as well.
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	membership, ok := resolveMember(w, r, h.membershipStore, roomID)
	if !ok {
		return
	}

	result, err := h.teardownStore.MemberLeaves(membership.ID, roomID)
	if err != nil {
		writeError(w, err, "failed to leave room")
		return
	}

	h.logger.Info("member left", "room_id", roomID, "membership_id", membership.ID, "room_deleted", result.RoomDeleted)
	writeJSON(w, http.StatusOK, result)
}

func (h *RoomHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	members, err := h.membershipStore.ListByRoom(roomID)
	if err != nil {
		writeError(w, err, "failed to list members")
		return
	}
	if members == nil {
		members = []model.MembershipWithUser{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *RoomHandler) Promote(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	memberID, err := parsePathInt(r, "memberID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member id"})
		return
	}
	if _, ok := resolveAdmin(w, r, h.membershipStore, roomID); !ok {
		return
	}

	target, err := h.membershipStore.Get(memberID)
	if err != nil {
		writeError(w, err, "failed to get membership")
		return
	}
	if target == nil || target.RoomID != roomID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "membership not found"})
		return
	}

	if err := h.membershipStore.PromoteToAdmin(memberID); err != nil {
		writeError(w, err, "failed to promote member")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
}

func (h *RoomHandler) Invite(w http.ResponseWriter, r *http.Request) {
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
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	inv, err := h.invitationStore.Create(roomID, membership.ID, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		writeError(w, err, "failed to create invitation")
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *RoomHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := resolveMember(w, r, h.membershipStore, roomID); !ok {
		return
	}

	invitations, err := h.invitationStore.ListByRoom(roomID)
	if err != nil {
		writeError(w, err, "failed to list invitations")
		return
	}
	if invitations == nil {
		invitations = []model.Invitation{}
	}
	writeJSON(w, http.StatusOK, invitations)
}
