package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"asinity/internal/domain"
	"asinity/internal/repos"
	"asinity/internal/services"
)

func userdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	schema := `
	CREATE TABLE users(
	  id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, name TEXT NOT NULL,
	  password_hash TEXT NOT NULL, role TEXT NOT NULL, created_at TEXT);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func authSvc(t *testing.T) *services.AuthService {
	t.Helper()
	return &services.AuthService{
		Users:      repos.NewUserRepo(userdb(t)),
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
}

func TestAuth_RegisterLoginRefresh(t *testing.T) {
	svc := authSvc(t)

	if _, err := svc.Register("alice@asinity.test", "Alice", "Passw0rd!"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register("alice@asinity.test", "Alice", "Passw0rd!"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}

	pair, err := svc.Login("alice@asinity.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.Parse(pair.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != "USER" || claims.Kind != "access" {
		t.Fatalf("bad access claims: %+v", claims)
	}

	access, err := svc.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	claims, err = svc.Parse(access)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Kind != "access" {
		t.Fatalf("refresh must mint an access token, got %+v", claims)
	}

	// A refresh token is not an access token.
	if _, err := svc.Refresh(pair.AccessToken); !errors.Is(err, domain.ErrBadCreds) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
}

func TestAuth_BadCredentials(t *testing.T) {
	svc := authSvc(t)

	if _, err := svc.Register("bob@asinity.test", "Bob", "Passw0rd!"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login("bob@asinity.test", "wrong-pass"); !errors.Is(err, domain.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	if _, err := svc.Login("nobody@asinity.test", "Passw0rd!"); !errors.Is(err, domain.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds for unknown email, got %v", err)
	}
}
