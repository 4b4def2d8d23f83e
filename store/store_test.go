package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/bbiangul/kgqa/graph"
)

func sampleRecord(id string, created time.Time) *Record {
	g := graph.New()
	g.AddEntity(graph.Entity{Label: "Google", Type: "Company"})
	g.AddRelation(graph.Relation{From: "Larry Page", To: "Google", Label: "founded"})
	g.AddRelation(graph.Relation{From: "Google", To: "YouTube", Label: "owns"})
	return &Record{
		ID:          id,
		Description: "sample " + id,
		CreatedAt:   created,
		TextCount:   2,
		Stats:       graph.ComputeStats(g),
		Graph:       g,
	}
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("get_missing", func(t *testing.T) {
		if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("put_get", func(t *testing.T) {
		want := sampleRecord("g1", base)
		if err := s.Put(ctx, want); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Get(ctx, "g1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ID != want.ID || got.Description != want.Description || got.TextCount != want.TextCount {
			t.Errorf("metadata: got %+v", got)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("created_at: got %v, want %v", got.CreatedAt, want.CreatedAt)
		}
		if got.Stats != want.Stats {
			t.Errorf("stats: got %+v, want %+v", got.Stats, want.Stats)
		}
		if !reflect.DeepEqual(got.Graph.Entities(), want.Graph.Entities()) {
			t.Errorf("nodes: got %v", got.Graph.Entities())
		}
		if !reflect.DeepEqual(got.Graph.Relations(), want.Graph.Relations()) {
			t.Errorf("edges: got %v", got.Graph.Relations())
		}
	})

	t.Run("put_replaces", func(t *testing.T) {
		rec := sampleRecord("g1", base)
		rec.Description = "replaced"
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Get(ctx, "g1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Description != "replaced" {
			t.Errorf("description: got %q", got.Description)
		}
	})

	t.Run("put_empty_id", func(t *testing.T) {
		if err := s.Put(ctx, sampleRecord("", base)); !errors.Is(err, ErrInvalidID) {
			t.Errorf("got %v, want ErrInvalidID", err)
		}
	})

	t.Run("list_ordered", func(t *testing.T) {
		for i, id := range []string{"g3", "g2"} {
			if err := s.Put(ctx, sampleRecord(id, base.Add(time.Duration(i+1)*time.Minute))); err != nil {
				t.Fatalf("Put %s: %v", id, err)
			}
		}
		recs, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		var ids []string
		for _, r := range recs {
			ids = append(ids, r.ID)
			if r.Graph != nil {
				t.Errorf("%s: List should not load graphs", r.ID)
			}
			if r.Stats.Nodes != 3 {
				t.Errorf("%s: stats nodes = %d, want 3", r.ID, r.Stats.Nodes)
			}
		}
		if want := []string{"g1", "g3", "g2"}; !reflect.DeepEqual(ids, want) {
			t.Errorf("order: got %v, want %v", ids, want)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Delete(ctx, "g3"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, "g3"); !errors.Is(err, ErrNotFound) {
			t.Errorf("after delete: got %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, "g3"); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete: got %v, want ErrNotFound", err)
		}
	})

	t.Run("closed", func(t *testing.T) {
		if err := s.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if _, err := s.Get(ctx, "g1"); !errors.Is(err, ErrClosed) {
			t.Errorf("Get after close: got %v, want ErrClosed", err)
		}
		if _, err := s.List(ctx); !errors.Is(err, ErrClosed) {
			t.Errorf("List after close: got %v, want ErrClosed", err)
		}
	})
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestBadgerInMemory(t *testing.T) {
	s, err := NewBadger("", true)
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	testStore(t, s)
}

func TestBadgerReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "badger")

	s, err := NewBadger(dir, false)
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	if err := s.Put(ctx, sampleRecord("persisted", time.Now())); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = NewBadger(dir, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	rec, err := s.Get(ctx, "persisted")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if rec.Graph.NumEdges() != 2 {
		t.Errorf("edges: got %d, want 2", rec.Graph.NumEdges())
	}
}

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := NewBadger("", false); err == nil {
		t.Error("expected error for empty dir in on-disk mode")
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{"", false},
		{BackendMemory, false},
		{BackendBadger, false}, // empty path runs in memory
		{"redis", true},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			s, err := Open(tt.kind, "")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			s.Close()
		})
	}
}
