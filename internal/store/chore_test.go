package store

import (
	"testing"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

func TestChoreCreateAndGet(t *testing.T) {
	f := newRoomFixture(t)

	freq := 2
	c, err := f.chores.Create(f.room.ID, ChoreParams{
		Name:           "Water plants",
		Description:    "All of them, even the cactus",
		Frequency:      model.FrequencyCustom,
		FrequencyValue: &freq,
		Timing:         "evening",
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	if c.Name != "Water plants" {
		t.Errorf("name = %q", c.Name)
	}
	if c.Frequency != model.FrequencyCustom {
		t.Errorf("frequency = %q, want %q", c.Frequency, model.FrequencyCustom)
	}
	if c.FrequencyValue == nil || *c.FrequencyValue != 2 {
		t.Errorf("frequency_value = %v, want 2", c.FrequencyValue)
	}
	if c.LastCompleted != nil {
		t.Error("new chore should have no last_completed")
	}

	got, err := f.chores.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get chore: %v", err)
	}
	if got == nil || got.ID != c.ID {
		t.Fatalf("get returned %+v", got)
	}
}

func TestChoreCreateValidation(t *testing.T) {
	f := newRoomFixture(t)

	_, err := f.chores.Create(f.room.ID, ChoreParams{Frequency: model.FrequencyDaily, IsActive: true})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("empty name: expected validation error, got %v", err)
	}

	_, err = f.chores.Create(f.room.ID, ChoreParams{Name: "Dust", Frequency: "fortnightly", IsActive: true})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("bad frequency: expected validation error, got %v", err)
	}
}

func TestChoreListSkipsInactive(t *testing.T) {
	f := newRoomFixture(t)

	active := f.newChore(t, ChoreParams{Name: "Dishes"})
	retired := f.newChore(t, ChoreParams{Name: "Shovel snow"})

	p := ChoreParams{Name: retired.Name, Frequency: retired.Frequency, IsActive: false}
	if _, err := f.chores.Update(retired.ID, p); err != nil {
		t.Fatalf("deactivate chore: %v", err)
	}

	chores, err := f.chores.ListByRoom(f.room.ID)
	if err != nil {
		t.Fatalf("list chores: %v", err)
	}
	if len(chores) != 1 || chores[0].ID != active.ID {
		t.Fatalf("list = %+v, want only the active chore", chores)
	}
}

func TestChoreUpdate(t *testing.T) {
	f := newRoomFixture(t)
	c := f.newChore(t, ChoreParams{Name: "Dishes"})

	updated, err := f.chores.Update(c.ID, ChoreParams{
		Name:             "Dishes and counters",
		Frequency:        model.FrequencyDaily,
		ApprovalRequired: true,
		IsActive:         true,
	})
	if err != nil {
		t.Fatalf("update chore: %v", err)
	}
	if updated.Name != "Dishes and counters" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.Frequency != model.FrequencyDaily {
		t.Errorf("frequency = %q", updated.Frequency)
	}
	if !updated.ApprovalRequired {
		t.Error("approval_required not persisted")
	}
}

func TestChoreUpdateMissing(t *testing.T) {
	f := newRoomFixture(t)

	_, err := f.chores.Update(9999, ChoreParams{Name: "Ghost", Frequency: model.FrequencyDaily, IsActive: true})
	if !apperr.IsKind(err, apperr.KindReference) {
		t.Errorf("expected reference error, got %v", err)
	}
}

func TestChoreDeleteCascades(t *testing.T) {
	f := newRoomFixture(t)
	c := f.newChore(t, ChoreParams{ApprovalRequired: true})

	if _, err := f.assignments.Assign(c.ID, f.alice.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	completion, err := f.completions.Submit(c.ID, f.alice.ID, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.completions.Verify(completion.ID, f.admin.ID, model.VerificationApproved, ""); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := f.swaps.Propose(c.ID, f.alice.ID, f.bob.ID, ""); err != nil {
		t.Fatalf("propose: %v", err)
	}

	if err := f.chores.Delete(c.ID); err != nil {
		t.Fatalf("delete chore: %v", err)
	}

	for _, table := range []string{"chore_assignments", "chore_completions", "chore_swap_requests", "chore_assignment_history"} {
		n := f.count(t, `SELECT COUNT(*) FROM `+table+` WHERE chore_id = ?`, c.ID)
		if n != 0 {
			t.Errorf("table %s still has %d rows for the deleted chore", table, n)
		}
	}

	got, err := f.chores.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get deleted chore: %v", err)
	}
	if got != nil {
		t.Errorf("expected chore to be gone, got %+v", got)
	}
}
