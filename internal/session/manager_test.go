package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	m, err := NewManager(store, "test-secret", ttl)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, store
}

func TestManager_StartCurrentClear(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, time.Hour)

	token, err := m.Start(ctx, 42)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token should be an opaque JWT, got %q", token)
	}

	uid, ok, err := m.CurrentUser(ctx, token)
	if err != nil || !ok || uid != 42 {
		t.Fatalf("CurrentUser = (%d, %v, %v), want (42, true, nil)", uid, ok, err)
	}

	if err := m.Clear(ctx, token); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected store to be empty after Clear, got %d", store.Len())
	}
	if _, ok, _ := m.CurrentUser(ctx, token); ok {
		t.Fatal("session should be gone after Clear")
	}

	// Clear is idempotent.
	if err := m.Clear(ctx, token); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestManager_AnonymousTokens(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, time.Hour)

	other, err := NewManager(NewMemoryStore(), "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	foreign, err := other.Start(ctx, 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	for name, token := range map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"wrong secret":  foreign,
		"truncated sig": foreign[:len(foreign)-3],
	} {
		t.Run(name, func(t *testing.T) {
			uid, ok, err := m.CurrentUser(ctx, token)
			if err != nil || ok || uid != 0 {
				t.Fatalf("CurrentUser = (%d, %v, %v), want anonymous", uid, ok, err)
			}
			if err := m.Clear(ctx, token); err != nil {
				t.Fatalf("Clear should ignore invalid tokens, got %v", err)
			}
		})
	}
}

func TestManager_Expired(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, time.Minute)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }
	store.now = m.now

	token, err := m.Start(ctx, 5)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	store.now = m.now

	if _, ok, err := m.CurrentUser(ctx, token); ok || err != nil {
		t.Fatalf("expired session should be anonymous, got ok=%v err=%v", ok, err)
	}
}

type failingStore struct{ err error }

func (f failingStore) Save(context.Context, string, int, time.Duration) error { return f.err }
func (f failingStore) Load(context.Context, string) (int, error)              { return 0, f.err }
func (f failingStore) Delete(context.Context, string) error                   { return f.err }

func TestManager_StoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("store down")

	good, _ := newTestManager(t, time.Hour)
	token, err := good.Start(ctx, 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	m, err := NewManager(failingStore{err: boom}, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := m.Start(ctx, 1); !errors.Is(err, boom) {
		t.Fatalf("expected store error from Start, got %v", err)
	}
	if _, _, err := m.CurrentUser(ctx, token); !errors.Is(err, boom) {
		t.Fatalf("expected store error from CurrentUser, got %v", err)
	}
}

func TestNewManager_EmptySecret(t *testing.T) {
	if _, err := NewManager(NewMemoryStore(), "", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
