// File path: internal/store/store_test.go
package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := Config{
		Path:         filepath.Join(t.TempDir(), "audit.db"),
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		BusyTimeout:  2 * time.Second,
	}
	s, err := OpenWithConfig(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListDispatches(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []DispatchRecord{
		{Kind: "contact", MessageID: "msg-a", Subject: "New Contact Form Submission", Recipients: 1, CreatedAt: base},
		{Kind: "requirements", MessageID: "msg-b", Subject: "New Project Requirements", Recipients: 2, CreatedAt: base.Add(time.Minute)},
	}
	for _, rec := range records {
		if err := s.RecordDispatch(ctx, rec); err != nil {
			t.Fatalf("record dispatch: %v", err)
		}
	}

	got, err := s.RecentDispatches(ctx, 10)
	if err != nil {
		t.Fatalf("recent dispatches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].MessageID != "msg-b" {
		t.Fatalf("expected newest first, got %q", got[0].MessageID)
	}
	if got[0].Recipients != 2 || got[1].Recipients != 1 {
		t.Fatalf("unexpected recipient counts: %+v", got)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := OpenWithConfig(Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
