/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/airwavefm/airwave/internal/models"
)

func TestParse_ValidHS256(t *testing.T) {
	secret := []byte("test-secret")
	token, err := Issue(secret, Claims{UserID: "u1", Email: "ops@airwave.fm"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := Parse(secret, token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "ops@airwave.fm" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParse_RejectsUnexpectedAlgorithm(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   "u1",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	tokenStr, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := Parse(secret, tokenStr); err == nil {
		t.Fatalf("expected parse to reject non-HS256 token")
	}
}

func TestParse_RejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	token, err := Issue(secret, Claims{UserID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(secret, token); err == nil {
		t.Fatalf("expected parse to reject expired token")
	}
}

func TestMiddleware_AllowsBearerToken(t *testing.T) {
	secret := []byte("test-secret")
	token, err := Issue(secret, Claims{UserID: "u1", Email: "ops@airwave.fm"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var gotClaims *Claims
	handler := Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/tracks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if gotClaims == nil || gotClaims.UserID != "u1" {
		t.Fatalf("claims = %+v", gotClaims)
	}
}

func TestMiddleware_RejectsMissingToken(t *testing.T) {
	handler := Middleware([]byte("test-secret"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/tracks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_QueryTokenOnlyForEventsUpgrade(t *testing.T) {
	secret := []byte("test-secret")
	token, err := Issue(secret, Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	handler := Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// Query token on the WebSocket upgrade path passes.
	req := httptest.NewRequest(http.MethodGet, "/ws/events?token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("upgrade status = %d, want 204", rec.Code)
	}

	// Same token on a plain request is refused.
	req = httptest.NewRequest(http.MethodGet, "/admin/tracks?token="+token, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("plain status = %d, want 401", rec.Code)
	}
}

type fakeAdmins struct {
	admins map[string]models.AdminUser
}

func (f *fakeAdmins) AdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	admin, ok := f.admins[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &admin, nil
}

func (f *fakeAdmins) CreateAdmin(ctx context.Context, admin *models.AdminUser) error {
	if f.admins == nil {
		f.admins = make(map[string]models.AdminUser)
	}
	admin.ID = "admin-1"
	f.admins[admin.Email] = *admin
	return nil
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	store := &fakeAdmins{admins: map[string]models.AdminUser{
		"ops@airwave.fm": {ID: "admin-1", Email: "ops@airwave.fm", PasswordHash: string(hash)},
	}}
	a := NewAuthenticator(store, []byte("test-secret"), time.Hour)

	token, err := a.Login(context.Background(), "ops@airwave.fm", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := Parse([]byte("test-secret"), token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "admin-1" {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := a.Login(context.Background(), "ops@airwave.fm", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.Login(context.Background(), "ghost@airwave.fm", "whatever"); err != ErrInvalidCredentials {
		t.Fatalf("unknown account error = %v, want ErrInvalidCredentials", err)
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	store := &fakeAdmins{}
	a := NewAuthenticator(store, []byte("test-secret"), time.Hour)

	if err := a.Bootstrap(context.Background(), "ops@airwave.fm", "correct horse"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	first := store.admins["ops@airwave.fm"].PasswordHash

	if err := a.Bootstrap(context.Background(), "ops@airwave.fm", "different"); err != nil {
		t.Fatalf("second Bootstrap: %v", err)
	}
	if store.admins["ops@airwave.fm"].PasswordHash != first {
		t.Fatal("bootstrap overwrote an existing account")
	}
}
