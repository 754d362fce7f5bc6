// Package auth reads the bearer credential and the signed-in user from the
// device key-value store.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/kv"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

// Store keys.
const (
	TokenKey = "userToken"
	UserKey  = "user"
)

var (
	// ErrNoCredential is returned when no bearer token is stored.
	ErrNoCredential = errors.New("auth: no credential")
	// ErrNotAuthenticated is returned when the signed-in user cannot be
	// determined.
	ErrNotAuthenticated = errors.New("auth: not signed in")
)

// Session is a view over the credential keys of a kv.Store.
type Session struct {
	store kv.Store
}

// NewSession returns a session backed by s.
func NewSession(s kv.Store) *Session {
	return &Session{store: s}
}

// Token returns the stored bearer token.
func (s *Session) Token() (string, error) {
	tok, ok, err := s.store.Get(TokenKey)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !ok || tok == "" {
		return "", ErrNoCredential
	}
	return tok, nil
}

// Viewer returns the signed-in user. The stored user object wins; otherwise
// the id is read from the token's claims without verifying the signature,
// since the server verifies it on every call.
func (s *Session) Viewer() (model.User, error) {
	raw, ok, err := s.store.Get(UserKey)
	if err != nil {
		return model.User{}, fmt.Errorf("read user: %w", err)
	}
	if ok && raw != "" {
		var ref model.UserRef
		if err := json.Unmarshal([]byte(raw), &ref); err == nil && ref.ID != "" {
			return ref.User(), nil
		}
	}

	tok, err := s.Token()
	if err != nil {
		return model.User{}, ErrNotAuthenticated
	}
	u, err := userFromToken(tok)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	return u, nil
}

// ViewerID returns the signed-in user id, or "" when signed out.
func (s *Session) ViewerID() string {
	u, err := s.Viewer()
	if err != nil {
		return ""
	}
	return u.ID
}

// SignIn stores the token and user.
func (s *Session) SignIn(token string, u model.User) error {
	if err := s.store.Set(TokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	data, err := json.Marshal(model.UserRef{ID: u.ID, Name: u.Name, Avatar: u.Avatar})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(UserKey, string(data)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// SignOut removes the credential keys.
func (s *Session) SignOut() error {
	if err := s.store.Remove(TokenKey); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	if err := s.store.Remove(UserKey); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	return nil
}

func userFromToken(tok string) (model.User, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return model.User{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.User{}, errors.New("unexpected claims type")
	}

	id := firstClaim(claims, "id", "userId", "_id", "sub")
	if id == "" {
		return model.User{}, errors.New("token carries no user id")
	}
	return model.User{ID: id, Name: firstClaim(claims, "name")}, nil
}

func firstClaim(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
