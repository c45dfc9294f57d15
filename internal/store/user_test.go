package store

import "testing"

func TestUserCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	u, err := us.Create("frodo@example.com", "Frodo", "hashed-secret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "frodo@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "frodo@example.com")
	}
	if u.Name != "Frodo" {
		t.Errorf("name = %q, want %q", u.Name, "Frodo")
	}

	got, err := us.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatalf("get by id returned %+v", got)
	}

	byEmail, err := us.GetByEmail("frodo@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Fatalf("get by email returned %+v", byEmail)
	}
}

func TestUserGetMissing(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	got, err := us.GetByID(42)
	if err != nil {
		t.Fatalf("get missing user: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing user, got %+v", got)
	}

	byEmail, err := us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get missing by email: %v", err)
	}
	if byEmail != nil {
		t.Errorf("expected nil for missing email, got %+v", byEmail)
	}
}

func TestUserDuplicateEmailFails(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	if _, err := us.Create("sam@example.com", "Sam", "h1"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("sam@example.com", "Other Sam", "h2"); err == nil {
		t.Error("expected duplicate email to fail")
	}
}

func TestGetPasswordHash(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	if _, err := us.Create("merry@example.com", "Merry", "the-hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	hash, err := us.GetPasswordHash("merry@example.com")
	if err != nil {
		t.Fatalf("get password hash: %v", err)
	}
	if hash != "the-hash" {
		t.Errorf("hash = %q, want %q", hash, "the-hash")
	}

	missing, err := us.GetPasswordHash("nobody@example.com")
	if err != nil {
		t.Fatalf("get missing hash: %v", err)
	}
	if missing != "" {
		t.Errorf("expected empty hash for missing user, got %q", missing)
	}
}
