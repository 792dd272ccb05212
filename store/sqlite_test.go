package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLite(t *testing.T, maxSize, maxEntrySize int64) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"), maxSize, maxEntrySize)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLitePutGet(t *testing.T) {
	s := newTestSQLite(t, 0, 0)
	ctx := context.Background()
	if err := s.Put(ctx, testEntry("a", "Hello world", time.Minute)); err != nil {
		t.Fatal(err)
	}
	entry, ok, err := s.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("ok: %v, err: %v", ok, err)
	}
	if string(entry.Body) != "Hello world" {
		t.Fatalf("Body is %s", entry.Body)
	}
	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Fatal("Got entry for missing key")
	}
}

func TestSQLiteExpiredEntryPurged(t *testing.T) {
	s := newTestSQLite(t, 0, 0)
	ctx := context.Background()
	expired := testEntry("a", "old", time.Minute)
	expired.StoredAt = time.Now().Add(-2 * time.Minute)
	s.Put(ctx, expired)

	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Fatal("Expired entry served")
	}
}

func TestSQLiteReplace(t *testing.T) {
	s := newTestSQLite(t, 0, 0)
	ctx := context.Background()
	s.Put(ctx, testEntry("a", "one", time.Minute))
	s.Put(ctx, testEntry("a", "two", time.Minute))

	entry, _, _ := s.Get(ctx, "a")
	if string(entry.Body) != "two" {
		t.Fatalf("Body is %s", entry.Body)
	}
}

func TestSQLiteRemove(t *testing.T) {
	s := newTestSQLite(t, 0, 0)
	ctx := context.Background()
	s.Put(ctx, testEntry("a", "Hello world", time.Minute))
	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Fatal("Removed entry still served")
	}
}

func TestSQLiteOversizedEntryRejected(t *testing.T) {
	s := newTestSQLite(t, 0, 64)
	ctx := context.Background()
	if err := s.Put(ctx, testEntry("a", "this body is definitely larger than the admission limit", time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Fatal("Oversized entry admitted")
	}
}

func TestSQLiteTrimsToBudget(t *testing.T) {
	s := newTestSQLite(t, 2048, 0)
	ctx := context.Background()
	body := make([]byte, 512)
	for i := 0; i < 8; i++ {
		entry := testEntry(fmt.Sprintf("k%d", i), "", time.Duration(i+1)*time.Minute)
		entry.Body = body
		if err := s.Put(ctx, entry); err != nil {
			t.Fatal(err)
		}
	}

	// the soonest-expiring entries go first
	if _, ok, _ := s.Get(ctx, "k0"); ok {
		t.Fatal("Soonest-expiring entry survived the trim")
	}
	if _, ok, _ := s.Get(ctx, "k7"); !ok {
		t.Fatal("Latest-expiring entry trimmed")
	}
}
