package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveGetRoundtrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	s := Session{
		ID:          NewID(),
		State:       "nonce",
		AccessToken: "tok",
		UserID:      "user_1",
		ExpiresAt:   time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != s.State || got.AccessToken != s.AccessToken || got.UserID != s.UserID {
		t.Fatalf("got %+v, want %+v", got, s)
	}
	if !got.ExpiresAt.Equal(s.ExpiresAt) {
		t.Fatalf("expires = %v, want %v", got.ExpiresAt, s.ExpiresAt)
	}
}

func TestSaveUpserts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	s := Session{ID: NewID(), State: "first"}
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.State = ""
	s.AccessToken = "tok"
	s.ExpiresAt = time.Now().Add(time.Hour)
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := st.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != "" || got.AccessToken != "tok" {
		t.Fatalf("upsert did not replace: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	s := Session{ID: NewID(), AccessToken: "tok"}
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err after delete = %v, want ErrNotFound", err)
	}
	// Absent id is a no-op.
	if err := st.Delete(ctx, s.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestAuthenticated(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		s    Session
		want bool
	}{
		{"valid", Session{AccessToken: "tok", ExpiresAt: now.Add(time.Minute)}, true},
		{"expired", Session{AccessToken: "tok", ExpiresAt: now.Add(-time.Minute)}, false},
		{"no token", Session{ExpiresAt: now.Add(time.Minute)}, false},
		{"zero", Session{}, false},
	}
	for _, tc := range cases {
		if got := tc.s.Authenticated(now); got != tc.want {
			t.Fatalf("%s: Authenticated = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewID()
		if len(id) != 32 {
			t.Fatalf("id length = %d, want 32", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
