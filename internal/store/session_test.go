package store

import (
	"testing"
	"time"
)

func setupSessionTest(t *testing.T) (*SessionStore, int64) {
	t.Helper()
	db := openTestDB(t)
	us := NewUserStore(db)
	u, err := us.Create("pippin@example.com", "Pippin", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewSessionStore(db), u.ID
}

func TestSessionCreateAndGet(t *testing.T) {
	ss, userID := setupSessionTest(t)

	sess, err := ss.Create(userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected a token")
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Error("expected expiry in the future")
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got == nil || got.UserID != userID {
		t.Fatalf("get by token returned %+v", got)
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	ss, userID := setupSessionTest(t)

	a, err := ss.Create(userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	b, err := ss.Create(userID)
	if err != nil {
		t.Fatalf("create second session: %v", err)
	}
	if a.Token == b.Token {
		t.Error("two sessions share a token")
	}
}

func TestSessionGetUnknownToken(t *testing.T) {
	ss, _ := setupSessionTest(t)

	got, err := ss.GetByToken("no-such-token")
	if err != nil {
		t.Fatalf("get unknown token: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestSessionDelete(t *testing.T) {
	ss, userID := setupSessionTest(t)

	sess, err := ss.Create(userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := ss.Delete(sess.Token); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get deleted session: %v", err)
	}
	if got != nil {
		t.Error("expected deleted session to be gone")
	}
}
