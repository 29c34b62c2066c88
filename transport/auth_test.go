package transport

import (
	"path/filepath"
	"testing"

	"teamshooter/persist"
)

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	db, err := persist.Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("persist.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAuth(db)
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	a := newTestAuth(t)

	id, token, err := a.Register("alice", "password1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id == 0 || token == "" {
		t.Fatalf("expected a player id and token, got id=%d token=%q", id, token)
	}

	gotID, username, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if gotID != id || username != "alice" {
		t.Fatalf("ValidateToken = (%d, %q), want (%d, alice)", gotID, username, id)
	}

	loginID, loginToken, err := a.Login("alice", "password1", "127.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loginID != id || loginToken == "" {
		t.Fatalf("Login = (%d, %q)", loginID, loginToken)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	a := newTestAuth(t)
	if _, _, err := a.Register("bob", "password1"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, _, err := a.Register("bob", "password2"); err == nil {
		t.Fatal("expected duplicate username to be rejected")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	a := newTestAuth(t)
	if _, _, err := a.Register("carl", "xy"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	a := newTestAuth(t)
	a.Register("dana", "password1")
	if _, _, err := a.Login("dana", "wrongpass", "127.0.0.1"); err == nil {
		t.Fatal("expected wrong password to be rejected")
	}
}

func TestLoginRateLimitsRepeatedFailures(t *testing.T) {
	a := newTestAuth(t)
	a.Register("erin", "password1")

	for i := 0; i < maxLoginAttempts; i++ {
		a.Login("erin", "wrongpass", "10.0.0.1")
	}
	if _, _, err := a.Login("erin", "password1", "10.0.0.1"); err == nil {
		t.Fatal("expected even the correct password to be refused once the attempt limit is exceeded")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	a := newTestAuth(t)
	if _, _, err := a.ValidateToken("not-a-jwt"); err == nil {
		t.Fatal("expected garbage token to fail validation")
	}
}
