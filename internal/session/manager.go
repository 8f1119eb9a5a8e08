package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	errEmptySecret  = errors.New("session secret is empty")
)

// Identity is the request-scoped view of the caller.
// UserID is zero for anonymous requests.
type Identity struct {
	Token  string
	UserID int
}

// Authenticated reports whether the request carries a live session.
func (i Identity) Authenticated() bool { return i.UserID > 0 }

// claims carries only the session id; the user id lives in the store.
type claims struct {
	jwt.RegisteredClaims
}

// Manager issues and resolves session tokens.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &Manager{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Start creates a session for userID and returns its signed token.
func (m *Manager) Start(ctx context.Context, userID int) (string, error) {
	id := uuid.NewString()
	if err := m.store.Save(ctx, id, userID, m.ttl); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	token, err := m.issueToken(id)
	if err != nil {
		_ = m.store.Delete(ctx, id)
		return "", err
	}
	return token, nil
}

// Clear ends the session behind token. Empty or invalid tokens are a no-op.
func (m *Manager) Clear(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	id, err := m.parseToken(token)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentUser resolves token to a user id. ok is false for anonymous callers;
// err is set only when the store itself fails.
func (m *Manager) CurrentUser(ctx context.Context, token string) (userID int, ok bool, err error) {
	if token == "" {
		return 0, false, nil
	}
	id, err := m.parseToken(token)
	if err != nil {
		return 0, false, nil
	}
	userID, err = m.store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load session: %w", err)
	}
	return userID, true, nil
}

func (m *Manager) issueToken(id string) (string, error) {
	now := m.now()
	rc := jwt.RegisteredClaims{
		ID:       id,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if m.ttl > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{RegisteredClaims: rc})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (m *Manager) parseToken(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.ID == "" {
		return "", ErrInvalidToken
	}
	return c.ID, nil
}
