/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package auth holds operator authentication: bcrypt password
// verification and HS256 JWT issuing for the admin write API.
package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/airwavefm/airwave/internal/models"
)

// ErrInvalidCredentials is returned on any login failure. The caller
// cannot tell a missing account from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DefaultTokenTTL is how long issued operator tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// AdminStore is the store slice the authenticator needs.
type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	CreateAdmin(ctx context.Context, admin *models.AdminUser) error
}

// Authenticator verifies operator logins and issues tokens.
type Authenticator struct {
	store  AdminStore
	secret []byte
	ttl    time.Duration
}

func NewAuthenticator(store AdminStore, secret []byte, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Authenticator{store: store, secret: secret, ttl: ttl}
}

// Login verifies the password against the stored hash and returns a
// signed token on success.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := a.store.AdminByEmail(ctx, email)
	if err != nil {
		// Burn comparable time so lookups and mismatches are
		// indistinguishable to a remote caller.
		_ = bcrypt.CompareHashAndPassword(
			[]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0q0lcmWyGmAbv/ZgVxJtVex1lBO"), []byte(password))
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return Issue(a.secret, Claims{UserID: admin.ID, Email: admin.Email}, a.ttl)
}

// Bootstrap creates the first operator account when the email is not
// taken yet. Used by the serve command's --admin flags.
func (a *Authenticator) Bootstrap(ctx context.Context, email, password string) error {
	if _, err := a.store.AdminByEmail(ctx, email); err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return a.store.CreateAdmin(ctx, &models.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
	})
}
