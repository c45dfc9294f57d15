package store

import (
	"testing"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

func TestMembershipCreateAndLookup(t *testing.T) {
	f := newRoomFixture(t)

	m, err := f.memberships.MembershipOf(f.alice.UserID, f.room.ID)
	if err != nil {
		t.Fatalf("membership of: %v", err)
	}
	if m == nil || m.ID != f.alice.ID {
		t.Fatalf("membership of returned %+v", m)
	}
	if m.Role != model.RoleMember {
		t.Errorf("role = %q, want %q", m.Role, model.RoleMember)
	}
	if !m.IsActive {
		t.Error("expected active membership")
	}
}

func TestMembershipCreateUnknownRole(t *testing.T) {
	f := newRoomFixture(t)

	u, err := f.users.Create("x@example.com", "X", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err = f.memberships.Create(u.ID, f.room.ID, "owner")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestMembershipRejoinReactivates(t *testing.T) {
	f := newRoomFixture(t)

	if _, err := f.teardown.MemberLeaves(f.alice.ID, f.room.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	m, err := f.memberships.Create(f.alice.UserID, f.room.ID, model.RoleMember)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if !m.IsActive {
		t.Error("expected rejoined membership to be active")
	}
}

func TestRoleChecks(t *testing.T) {
	f := newRoomFixture(t)

	isAdmin, err := f.memberships.IsAdmin(f.admin.UserID, f.room.ID)
	if err != nil {
		t.Fatalf("is admin: %v", err)
	}
	if !isAdmin {
		t.Error("creator should be admin")
	}

	isAdmin, err = f.memberships.IsAdmin(f.alice.UserID, f.room.ID)
	if err != nil {
		t.Fatalf("is admin: %v", err)
	}
	if isAdmin {
		t.Error("plain member reported as admin")
	}

	role, err := f.memberships.RoleOf(99999, f.room.ID)
	if err != nil {
		t.Fatalf("role of stranger: %v", err)
	}
	if role != "" {
		t.Errorf("role = %q, want empty for non-member", role)
	}
}

func TestRequireMemberAndAdmin(t *testing.T) {
	f := newRoomFixture(t)

	if _, err := f.memberships.RequireMember(f.alice.UserID, f.room.ID); err != nil {
		t.Errorf("require member failed for a member: %v", err)
	}
	if _, err := f.memberships.RequireMember(99999, f.room.ID); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("expected authorization error for stranger, got %v", err)
	}
	if _, err := f.memberships.RequireAdmin(f.admin.UserID, f.room.ID); err != nil {
		t.Errorf("require admin failed for the admin: %v", err)
	}
	if _, err := f.memberships.RequireAdmin(f.alice.UserID, f.room.ID); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("expected authorization error for plain member, got %v", err)
	}
}

func TestListByRoomJoinsUserNames(t *testing.T) {
	f := newRoomFixture(t)

	members, err := f.memberships.ListByRoom(f.room.ID)
	if err != nil {
		t.Fatalf("list by room: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("len = %d, want 3", len(members))
	}
	for _, m := range members {
		if m.UserName == "" || m.UserEmail == "" {
			t.Errorf("member %d missing joined user fields: %+v", m.ID, m)
		}
	}
}

func TestPromoteToAdmin(t *testing.T) {
	f := newRoomFixture(t)

	if err := f.memberships.PromoteToAdmin(f.alice.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	m, err := f.memberships.Get(f.alice.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", m.Role, model.RoleAdmin)
	}

	if err := f.memberships.PromoteToAdmin(99999); !apperr.IsKind(err, apperr.KindReference) {
		t.Errorf("expected reference error, got %v", err)
	}
}
