package store

import (
	"testing"

	"roomsync/internal/apperr"
)

func TestExpenseCreateWithSplits(t *testing.T) {
	f := newRoomFixture(t)
	es := NewExpenseStore(f.db)

	e, err := es.Create(f.room.ID, f.admin.ID, "groceries", 3000, []Split{
		{MembershipID: f.admin.ID, AmountCents: 1000},
		{MembershipID: f.alice.ID, AmountCents: 1000},
		{MembershipID: f.bob.ID, AmountCents: 1000},
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if e.AmountCents != 3000 {
		t.Errorf("amount = %d, want 3000", e.AmountCents)
	}
	if len(e.Splits) != 3 {
		t.Fatalf("splits = %d, want 3", len(e.Splits))
	}

	// The payer's own share starts settled, the rest do not.
	for _, sp := range e.Splits {
		want := sp.MembershipID == f.admin.ID
		if sp.IsSettled != want {
			t.Errorf("split for membership %d settled = %v, want %v", sp.MembershipID, sp.IsSettled, want)
		}
	}
}

func TestExpenseSplitSumMustMatch(t *testing.T) {
	f := newRoomFixture(t)
	es := NewExpenseStore(f.db)

	_, err := es.Create(f.room.ID, f.admin.ID, "pizza", 2000, []Split{
		{MembershipID: f.admin.ID, AmountCents: 500},
		{MembershipID: f.alice.ID, AmountCents: 500},
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for mismatched splits, got %v", err)
	}
}

func TestExpenseValidation(t *testing.T) {
	f := newRoomFixture(t)
	es := NewExpenseStore(f.db)

	if _, err := es.Create(f.room.ID, f.admin.ID, "", 100, nil); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("empty description: got %v", err)
	}
	if _, err := es.Create(f.room.ID, f.admin.ID, "free stuff", 0, nil); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("zero amount: got %v", err)
	}
}

func TestSettleSplit(t *testing.T) {
	f := newRoomFixture(t)
	es := NewExpenseStore(f.db)

	e, err := es.Create(f.room.ID, f.admin.ID, "utilities", 2000, []Split{
		{MembershipID: f.admin.ID, AmountCents: 1000},
		{MembershipID: f.alice.ID, AmountCents: 1000},
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	var aliceSplit int64
	for _, sp := range e.Splits {
		if sp.MembershipID == f.alice.ID {
			aliceSplit = sp.ID
		}
	}

	if err := es.SettleSplit(aliceSplit); err != nil {
		t.Fatalf("settle split: %v", err)
	}

	// Settling the same split again is a conflict.
	if err := es.SettleSplit(aliceSplit); !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("expected conflict on double settle, got %v", err)
	}

	if err := es.SettleSplit(9999); !apperr.IsKind(err, apperr.KindReference) {
		t.Errorf("expected reference error for unknown split, got %v", err)
	}
}

func TestExpenseListByRoom(t *testing.T) {
	f := newRoomFixture(t)
	es := NewExpenseStore(f.db)

	if _, err := es.Create(f.room.ID, f.admin.ID, "rent", 120000, nil); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if _, err := es.Create(f.room.ID, f.alice.ID, "soap", 400, nil); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	expenses, err := es.ListByRoom(f.room.ID)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("len = %d, want 2", len(expenses))
	}
}
