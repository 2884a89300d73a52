package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/config"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/repository"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/repository/memstore"
)

func newTestServices(t *testing.T) (*Services, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	svcs := NewServices(store, nil, config.Config{JWTSecret: "test-secret"})
	return svcs, store
}

func TestAuthRegisterLogin(t *testing.T) {
	svcs, _ := newTestServices(t)
	ctx := context.Background()
	u, err := svcs.Auth.Register(ctx, "cook", "cook@example.com", "longenough")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == "" || u.Username != "cook" {
		t.Fatalf("bad user: %+v", u)
	}
	token, err := svcs.Auth.Login(ctx, "cook@example.com", "longenough")
	if err != nil || token == "" {
		t.Fatalf("login failed: %v", err)
	}
	uid, err := svcs.Auth.ParseToken(ctx, token)
	if err != nil || uid != u.ID {
		t.Fatalf("parse: uid=%q err=%v", uid, err)
	}
}

func TestAuthRegister_Validation(t *testing.T) {
	svcs, _ := newTestServices(t)
	ctx := context.Background()
	_, err := svcs.Auth.Register(ctx, "", "not-an-email", "")
	var ve *repository.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	for _, f := range []string{"username", "email", "password"} {
		if !slices.Contains(ve.Fields, f) {
			t.Fatalf("missing field %q in %v", f, ve.Fields)
		}
	}
}

func TestAuthRegister_Duplicate(t *testing.T) {
	svcs, _ := newTestServices(t)
	ctx := context.Background()
	if _, err := svcs.Auth.Register(ctx, "cook", "cook@example.com", "longenough"); err != nil {
		t.Fatal(err)
	}
	_, err := svcs.Auth.Register(ctx, "cook", "other@example.com", "longenough")
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	svcs, _ := newTestServices(t)
	ctx := context.Background()
	if _, err := svcs.Auth.Register(ctx, "cook", "cook@example.com", "longenough"); err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Auth.Login(ctx, "cook@example.com", "wrongpassword"); err == nil {
		t.Fatal("want error for wrong password")
	}
	if _, err := svcs.Auth.Login(ctx, "nobody@example.com", "longenough"); err == nil {
		t.Fatal("want error for unknown email")
	}
}

func TestParseToken_Rejections(t *testing.T) {
	svcs, _ := newTestServices(t)
	ctx := context.Background()
	u, err := svcs.Auth.Register(ctx, "cook", "cook@example.com", "longenough")
	if err != nil {
		t.Fatal(err)
	}

	expired, err := svcs.Auth.IssueAccessToken(u.ID, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Auth.ParseToken(ctx, expired); err == nil {
		t.Fatal("expired token accepted")
	}

	other := &AuthService{repo: nil, jwtSecret: []byte("different-secret")}
	foreign, err := other.IssueAccessToken(u.ID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Auth.ParseToken(ctx, foreign); err == nil {
		t.Fatal("token signed with wrong key accepted")
	}

	if _, err := svcs.Auth.ParseToken(ctx, "not.a.jwt"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
