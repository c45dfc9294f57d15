package store

import (
	"testing"

	"roomsync/internal/apperr"
)

func TestAnnouncementCreateAndList(t *testing.T) {
	f := newRoomFixture(t)
	as := NewAnnouncementStore(f.db)

	a, err := as.Create(f.room.ID, f.alice.ID, "Party Saturday", "Bring snacks")
	if err != nil {
		t.Fatalf("create announcement: %v", err)
	}
	if a.Title != "Party Saturday" {
		t.Errorf("title = %q", a.Title)
	}

	announcements, err := as.ListByRoom(f.room.ID)
	if err != nil {
		t.Fatalf("list announcements: %v", err)
	}
	if len(announcements) != 1 {
		t.Fatalf("len = %d, want 1", len(announcements))
	}
}

func TestAnnouncementUpdateAuthorOnly(t *testing.T) {
	f := newRoomFixture(t)
	as := NewAnnouncementStore(f.db)

	a, err := as.Create(f.room.ID, f.alice.ID, "Old title", "")
	if err != nil {
		t.Fatalf("create announcement: %v", err)
	}

	updated, err := as.Update(a.ID, f.alice.ID, "New title", "with body")
	if err != nil {
		t.Fatalf("update announcement: %v", err)
	}
	if updated.Title != "New title" {
		t.Errorf("title = %q", updated.Title)
	}

	if _, err := as.Update(a.ID, f.bob.ID, "Hijacked", ""); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("expected authorization error for non-author, got %v", err)
	}
}

func TestAnnouncementValidation(t *testing.T) {
	f := newRoomFixture(t)
	as := NewAnnouncementStore(f.db)

	if _, err := as.Create(f.room.ID, f.alice.ID, "", "body"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := as.Update(9999, f.alice.ID, "title", ""); !apperr.IsKind(err, apperr.KindReference) {
		t.Errorf("expected reference error, got %v", err)
	}
}
