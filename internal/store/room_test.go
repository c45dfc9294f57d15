package store

import (
	"testing"

	"roomsync/internal/model"
)

func TestRoomCreateMakesCreatorAdmin(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)
	rs := NewRoomStore(db)

	u, err := us.Create("dana@example.com", "Dana", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	room, membership, err := rs.Create("Maple House", u.ID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.Name != "Maple House" {
		t.Errorf("name = %q, want %q", room.Name, "Maple House")
	}
	if len(room.RoomCode) != 6 {
		t.Errorf("room code %q should be 6 characters", room.RoomCode)
	}
	if membership.Role != model.RoleAdmin {
		t.Errorf("creator role = %q, want %q", membership.Role, model.RoleAdmin)
	}
	if membership.RoomID != room.ID || membership.UserID != u.ID {
		t.Errorf("membership wired wrong: %+v", membership)
	}
}

func TestRoomGetByCode(t *testing.T) {
	f := newRoomFixture(t)

	got, err := f.rooms.GetByCode(f.room.RoomCode)
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if got == nil || got.ID != f.room.ID {
		t.Fatalf("get by code returned %+v", got)
	}

	missing, err := f.rooms.GetByCode("ZZZZZZ")
	if err != nil {
		t.Fatalf("get missing code: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown code, got %+v", missing)
	}
}

func TestRoomListByUser(t *testing.T) {
	f := newRoomFixture(t)

	second, _, err := f.rooms.Create("Beach House", f.alice.UserID)
	if err != nil {
		t.Fatalf("create second room: %v", err)
	}

	rooms, err := f.rooms.ListByUser(f.alice.UserID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("len = %d, want 2", len(rooms))
	}

	// Leaving drops the room from the listing.
	if _, err := f.teardown.MemberLeaves(f.alice.ID, f.room.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	rooms, err = f.rooms.ListByUser(f.alice.UserID)
	if err != nil {
		t.Fatalf("list after leave: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != second.ID {
		t.Fatalf("rooms after leave = %+v", rooms)
	}
}

func TestRoomUpdateName(t *testing.T) {
	f := newRoomFixture(t)

	updated, err := f.rooms.UpdateName(f.room.ID, "Oak House")
	if err != nil {
		t.Fatalf("update name: %v", err)
	}
	if updated.Name != "Oak House" {
		t.Errorf("name = %q, want %q", updated.Name, "Oak House")
	}
}
