package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"roomsync/internal/apperr"
	"roomsync/internal/auth"
	"roomsync/internal/model"
	"roomsync/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusForKind(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindReference:
		return http.StatusNotFound
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates a store error to an HTTP response. Errors without a
// kind are internal: logged, and masked behind the fallback message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var e *apperr.Error
	if errors.As(err, &e) {
		writeJSON(w, statusForKind(e.Kind), map[string]string{"error": e.Message})
		return
	}
	log.Printf("%s: %v", fallback, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fallback})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func parsePathInt(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// resolveMember loads the caller's active membership in the room, writing
// the error response itself when the caller is not a member.
func resolveMember(w http.ResponseWriter, r *http.Request, memberships *store.MembershipStore, roomID int64) (*model.Membership, bool) {
	m, err := memberships.RequireMember(auth.UserID(r.Context()), roomID)
	if err != nil {
		writeError(w, err, "failed to check membership")
		return nil, false
	}
	return m, true
}

// resolveAdmin is resolveMember plus the admin role check.
func resolveAdmin(w http.ResponseWriter, r *http.Request, memberships *store.MembershipStore, roomID int64) (*model.Membership, bool) {
	m, err := memberships.RequireAdmin(auth.UserID(r.Context()), roomID)
	if err != nil {
		writeError(w, err, "failed to check membership")
		return nil, false
	}
	return m, true
}
