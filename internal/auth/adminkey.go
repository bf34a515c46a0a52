package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader is the HTTP header carrying the shared admin secret.
const AdminKeyHeader = "X-Admin-Key"

// adminSubject is the subject recorded for every admin-key request.
const adminSubject = "admin"

// AdminKeyAuthenticator accepts requests whose X-Admin-Key header equals the
// configured secret. The secret is held either in plain text, compared in
// constant time, or as a bcrypt hash.
type AdminKeyAuthenticator struct {
	key  []byte
	hash []byte
}

// NewAdminKeyAuthenticator creates an authenticator from a plain key, a
// bcrypt hash, or both. With both set, either one is accepted.
func NewAdminKeyAuthenticator(key, hash string) (*AdminKeyAuthenticator, error) {
	key = strings.TrimSpace(key)
	hash = strings.TrimSpace(hash)
	if key == "" && hash == "" {
		return nil, ErrNoAdminKeyConfig
	}

	a := &AdminKeyAuthenticator{}
	if key != "" {
		a.key = []byte(key)
	}
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("admin key hash: %w", err)
		}
		a.hash = []byte(hash)
	}

	return a, nil
}

// Authenticate checks the X-Admin-Key header.
func (a *AdminKeyAuthenticator) Authenticate(r *http.Request) (*AuthInfo, error) {
	provided := r.Header.Get(AdminKeyHeader)
	if provided == "" {
		return nil, ErrUnauthenticated
	}

	if a.key != nil && subtle.ConstantTimeCompare([]byte(provided), a.key) == 1 {
		return &AuthInfo{Method: AuthMethodAdminKey, Subject: adminSubject}, nil
	}

	if a.hash != nil && bcrypt.CompareHashAndPassword(a.hash, []byte(provided)) == nil {
		return &AuthInfo{Method: AuthMethodAdminKey, Subject: adminSubject}, nil
	}

	return nil, ErrInvalidAdminKey
}

// Method returns the authentication method type.
func (a *AdminKeyAuthenticator) Method() AuthMethod {
	return AuthMethodAdminKey
}
