package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/finburn/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPayloadRoundTrip(t *testing.T) {
	s := openTemp(t)

	if _, err := s.LoadPayload("overview", "acct", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadPayload on empty store = %v, want ErrNotFound", err)
	}

	if err := s.SavePayload("overview", "acct", "", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("SavePayload: %v", err)
	}
	if err := s.SavePayload("overview", "acct", "", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("SavePayload: %v", err)
	}
	if err := s.SavePayload("bills", "acct", "month=3&year=2025", []byte(`{}`)); err != nil {
		t.Fatalf("SavePayload: %v", err)
	}

	p, err := s.LoadPayload("overview", "acct", "")
	if err != nil {
		t.Fatalf("LoadPayload: %v", err)
	}
	if string(p.Body) != `{"v":2}` {
		t.Fatalf("body = %s, want latest copy", p.Body)
	}
	if p.FetchedAt.IsZero() || p.Age(time.Now()) > time.Minute {
		t.Fatalf("FetchedAt = %v", p.FetchedAt)
	}

	n, err := s.PayloadCount()
	if err != nil || n != 2 {
		t.Fatalf("PayloadCount = %d, %v", n, err)
	}

	if err := s.DeletePayloads("acct"); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.PayloadCount(); n != 0 {
		t.Fatalf("PayloadCount after delete = %d", n)
	}
}

func TestSnapshots(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := s.SaveSnapshot(model.Snapshot{
			At:          base.Add(time.Duration(i) * time.Hour),
			Account:     "acct",
			TotalSpent:  float64(100 * (i + 1)),
			TopCategory: "Food",
			Categories:  map[string]float64{"Food": float64(50 * (i + 1)), "Travel": 10},
		})
		if err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}
	if _, err := s.SaveSnapshot(model.Snapshot{At: base, Account: "other"}); err != nil {
		t.Fatal(err)
	}

	snaps, err := s.Snapshots("acct", 2)
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}
	if snaps[0].TotalSpent != 300 || snaps[1].TotalSpent != 200 {
		t.Fatalf("order = %v, %v", snaps[0].TotalSpent, snaps[1].TotalSpent)
	}
	if snaps[0].Categories["Food"] != 150 || len(snaps[0].Categories) != 2 {
		t.Fatalf("categories = %v", snaps[0].Categories)
	}
	if !snaps[0].At.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("At = %v", snaps[0].At)
	}

	removed, err := s.PruneSnapshots("acct", 1)
	if err != nil || removed != 2 {
		t.Fatalf("PruneSnapshots = %d, %v", removed, err)
	}
	all, _ := s.Snapshots("acct", 0)
	if len(all) != 1 {
		t.Fatalf("after prune got %d", len(all))
	}
}
