package store

import (
	"database/sql"
	"testing"

	"roomsync/internal/database"
	"roomsync/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// roomFixture is one room with an admin (the creator) and two plain members,
// the shape most workflow tests need.
type roomFixture struct {
	db          *sql.DB
	users       *UserStore
	rooms       *RoomStore
	memberships *MembershipStore
	chores      *ChoreStore
	assignments *AssignmentStore
	completions *CompletionStore
	swaps       *SwapStore
	teardown    *TeardownStore

	room  *model.Room
	admin *model.Membership
	alice *model.Membership
	bob   *model.Membership
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()
	db := openTestDB(t)

	f := &roomFixture{
		db:          db,
		users:       NewUserStore(db),
		rooms:       NewRoomStore(db),
		memberships: NewMembershipStore(db),
		chores:      NewChoreStore(db),
		assignments: NewAssignmentStore(db),
		completions: NewCompletionStore(db),
		swaps:       NewSwapStore(db),
		teardown:    NewTeardownStore(db),
	}

	dana, err := f.users.Create("dana@example.com", "Dana", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	room, admin, err := f.rooms.Create("Maple House", dana.ID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	f.room = room
	f.admin = admin

	f.alice = f.join(t, "alice@example.com", "Alice")
	f.bob = f.join(t, "bob@example.com", "Bob")
	return f
}

func (f *roomFixture) join(t *testing.T, email, name string) *model.Membership {
	t.Helper()
	u, err := f.users.Create(email, name, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	m, err := f.memberships.Create(u.ID, f.room.ID, model.RoleMember)
	if err != nil {
		t.Fatalf("join room as %s: %v", email, err)
	}
	return m
}

// newChore creates a weekly chore with no approval gate unless overridden.
func (f *roomFixture) newChore(t *testing.T, p ChoreParams) *model.Chore {
	t.Helper()
	if p.Name == "" {
		p.Name = "Dishes"
	}
	if p.Frequency == "" {
		p.Frequency = model.FrequencyWeekly
	}
	p.IsActive = true
	c, err := f.chores.Create(f.room.ID, p)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	return c
}

func (f *roomFixture) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := f.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query: %v", err)
	}
	return n
}
