package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

func TestSubmitWithoutApprovalGateCreditsImmediately(t *testing.T) {
	f := newRoomFixture(t)
	c := f.newChore(t, ChoreParams{ApprovalRequired: false})

	completion, err := f.completions.Submit(c.ID, f.alice.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionApproved, completion.Status)
	assert.Equal(t, PointsPerCompletion, completion.PointsEarned)

	// Due-date baseline advanced in the same transaction.
	got, err := f.chores.GetByID(c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastCompleted)
	assert.Equal(t, completion.CompletedAt.UTC(), got.LastCompleted.UTC())

	m, err := f.memberships.Get(f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, PointsPerCompletion, m.Points)
	assert.Equal(t, 1, m.TotalCompleted)
}

func TestSubmitWithApprovalGateStartsPending(t *testing.T) {
	f := newRoomFixture(t)
	c := f.newChore(t, ChoreParams{ApprovalRequired: true})

	completion, err := f.completions.Submit(c.ID, f.alice.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionPending, completion.Status)
	assert.Zero(t, completion.PointsEarned)

	// No credit and no baseline movement until verified.
	got, err := f.chores.GetByID(c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastCompleted)

	m, err := f.memberships.Get(f.alice.ID)
	require.NoError(t, err)
	assert.Zero(t, m.Points)
	assert.Zero(t, m.TotalCompleted)
}

func TestSubmitRequiresPhotoWhenChoreDemandsIt(t *testing.T) {
	f := newRoomFixture(t)
	c := f.newChore(t, ChoreParams{PhotoRequired: true})

	_, err := f.completions.Submit(c.ID, f.alice.ID, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	empty := ""
	_, err = f.completions.Submit(c.ID, f.alice.ID, &empty)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	photo := "https://photos.example.com/sink.jpg"
	completion, err := f.completions.Submit(c.ID, f.alice.ID, &photo)
	require.NoError(t, err)
	require.NotNil(t, completion.PhotoURL)
	assert.Equal(t, photo, *completion.PhotoURL)
}

func TestSubmitUnknownChoreFails(t *testing.T) {
	f := newRoomFixture(t)

	_, err := f.completions.Submit(9999, f.alice.ID, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindReference))
}

func TestVerifyApproveCreditsAndStampsBaseline(t *testing.T) {
	f := newRoomFixture(t)
	c := f.newChore(t, ChoreParams{ApprovalRequired: true})

	completion, err := f.completions.Submit(c.ID, f.alice.ID, nil)
	require.NoError(t, err)

	v, err := f.completions.Verify(completion.ID, f.admin.ID, model.VerificationApproved, "looks clean")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationApproved, v.VerificationType)
	assert.Equal(t, f.admin.ID, v.VerifiedBy)

	got, err := f.completions.GetByID(completion.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionApproved, got.Status)
	assert.Equal(t, PointsPerCompletion, got.PointsEarned)

	// Baseline reflects when the work was done, not when it was approved.
	ch, err := f.chores.GetByID(c.ID)
	require.NoError(t, err)
	require.NotNil(t, ch.LastCompleted)
	assert.Equal(t, completion.CompletedAt.UTC(), ch.LastCompleted.UTC())

	m, err := f.memberships.Get(f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, PointsPerCompletion, m.Points)
	assert.Equal(t, 1, m.TotalCompleted)
}

func TestVerifyRejectLeavesBaselineAndPointsAlone(t *testing.T) {
	f := newRoomFixture(t)
	c := f.newChore(t, ChoreParams{ApprovalRequired: true})

	completion, err := f.completions.Submit(c.ID, f.alice.ID, nil)
	require.NoError(t, err)

	_, err = f.completions.Verify(completion.ID, f.admin.ID, model.VerificationRejected, "still dirty")
	require.NoError(t, err)

	got, err := f.completions.GetByID(completion.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionRejected, got.Status)
	assert.Zero(t, got.PointsEarned)

	ch, err := f.chores.GetByID(c.ID)
	require.NoError(t, err)
	assert.Nil(t, ch.LastCompleted)

	m, err := f.memberships.Get(f.alice.ID)
	require.NoError(t, err)
	assert.Zero(t, m.Points)
}

func TestVerifyRequiresAdmin(t *testing.T) {
	f := newRoomFixture(t)
	c := f.newChore(t, ChoreParams{ApprovalRequired: true})

	completion, err := f.completions.Submit(c.ID, f.alice.ID, nil)
	require.NoError(t, err)

	_, err = f.completions.Verify(completion.ID, f.bob.ID, model.VerificationApproved, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	// Still pending after the refused attempt.
	got, err := f.completions.GetByID(completion.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionPending, got.Status)
}

func TestVerifyTwiceConflicts(t *testing.T) {
	f := newRoomFixture(t)
	c := f.newChore(t, ChoreParams{ApprovalRequired: true})

	completion, err := f.completions.Submit(c.ID, f.alice.ID, nil)
	require.NoError(t, err)

	_, err = f.completions.Verify(completion.ID, f.admin.ID, model.VerificationApproved, "")
	require.NoError(t, err)

	_, err = f.completions.Verify(completion.ID, f.admin.ID, model.VerificationRejected, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// The losing verdict left no trace.
	got, err := f.completions.GetByID(completion.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionApproved, got.Status)

	n := f.count(t, `SELECT COUNT(*) FROM chore_verifications WHERE completion_id = ?`, completion.ID)
	assert.Equal(t, 1, n)
}

func TestVerifyInvalidOutcomeFails(t *testing.T) {
	f := newRoomFixture(t)
	c := f.newChore(t, ChoreParams{ApprovalRequired: true})

	completion, err := f.completions.Submit(c.ID, f.alice.ID, nil)
	require.NoError(t, err)

	_, err = f.completions.Verify(completion.ID, f.admin.ID, "maybe", "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestVerifyUnknownCompletionFails(t *testing.T) {
	f := newRoomFixture(t)

	_, err := f.completions.Verify(9999, f.admin.ID, model.VerificationApproved, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindReference))
}

func TestListPendingByRoomOldestFirst(t *testing.T) {
	f := newRoomFixture(t)
	gated := f.newChore(t, ChoreParams{Name: "Trash", ApprovalRequired: true})
	open := f.newChore(t, ChoreParams{Name: "Dishes"})

	_, err := f.completions.Submit(gated.ID, f.alice.ID, nil)
	require.NoError(t, err)
	_, err = f.completions.Submit(gated.ID, f.bob.ID, nil)
	require.NoError(t, err)
	_, err = f.completions.Submit(open.ID, f.alice.ID, nil)
	require.NoError(t, err)

	pending, err := f.completions.ListPendingByRoom(f.room.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, c := range pending {
		assert.Equal(t, model.CompletionPending, c.Status)
		assert.Equal(t, gated.ID, c.ChoreID)
	}
}
