// Tests for Load, List and Remove.

package docdb

import (
	"context"
	"testing"
)

// seedStore populates a four-record fixture and returns the ids in
// insertion order.
func seedStore(t *testing.T, s *Store) []string {
	t.Helper()
	ctx := context.Background()
	drafts := []map[string]any{
		{"p1": "a", "p2": float64(10)},
		{"p1": "b", "p2": float64(20)},
		{"p1": "c", "p2": float64(30)},
		{"p1": "a", "p2": float64(40)},
	}
	ids := make([]string, len(drafts))
	for i, fields := range drafts {
		r, err := s.Save(ctx, &Draft{Ref: testRef, Fields: fields}, nil)
		if err != nil {
			t.Fatalf("seed save %d failed: %v", i, err)
		}
		ids[i] = r.ID
	}
	return ids
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("filter with operators", func(t *testing.T) {
		s := New(nil)
		seedStore(t, s)
		got, err := s.List(ctx, testRef, &Query{Filter: map[string]any{"p2": map[string]any{"$gte": float64(20)}}})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 records, got %d", len(got))
		}
	})

	t.Run("filter with array membership", func(t *testing.T) {
		s := New(nil)
		seedStore(t, s)
		got, err := s.List(ctx, testRef, &Query{Filter: map[string]any{"p1": []any{"a", "b"}}})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 records, got %d", len(got))
		}
	})

	t.Run("id list preserves the order given", func(t *testing.T) {
		s := New(nil)
		ids := seedStore(t, s)
		got, err := s.List(ctx, testRef, &Query{IDs: []string{ids[2], "missing", ids[0]}})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
		if got[0].ID != ids[2] || got[1].ID != ids[0] {
			t.Errorf("ids out of order: %q, %q", got[0].ID, got[1].ID)
		}
	})

	t.Run("nil query lists the whole collection", func(t *testing.T) {
		s := New(nil)
		seedStore(t, s)
		got, err := s.List(ctx, testRef, nil)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 4 {
			t.Errorf("expected 4 records, got %d", len(got))
		}
	})

	t.Run("missing collection lists as empty", func(t *testing.T) {
		s := New(nil)
		got, err := s.List(ctx, CollectionRef{Namespace: "nope", Collection: "nothing"}, nil)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no records, got %d", len(got))
		}
	})

	t.Run("collections are isolated by namespace", func(t *testing.T) {
		s := New(nil)
		seedStore(t, s)
		other := CollectionRef{Namespace: "ns2", Collection: "foo"}
		if _, err := s.Save(ctx, &Draft{Ref: other, Fields: map[string]any{"p1": "z"}}, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, _ := s.List(ctx, other, nil)
		if len(got) != 1 {
			t.Errorf("expected 1 record in ns2, got %d", len(got))
		}
		got, _ = s.List(ctx, testRef, nil)
		if len(got) != 4 {
			t.Errorf("expected 4 records in default namespace, got %d", len(got))
		}
	})

	t.Run("results are independent copies", func(t *testing.T) {
		s := New(nil)
		ids := seedStore(t, s)
		got, _ := s.List(ctx, testRef, &Query{ID: ids[0]})
		got[0].Fields["p1"] = "mutated"
		again, _ := s.Load(ctx, testRef, &Query{ID: ids[0]})
		if again.Fields["p1"] == "mutated" {
			t.Error("caller mutation reached stored state")
		}
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		s := New(nil)
		ids := seedStore(t, s)
		got, err := s.Load(ctx, testRef, &Query{ID: ids[1]})
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got == nil || got.Fields["p1"] != "b" {
			t.Errorf("got %v, want p1=b", got)
		}
	})

	t.Run("missing id returns nil without error", func(t *testing.T) {
		s := New(nil)
		seedStore(t, s)
		got, err := s.Load(ctx, testRef, &Query{ID: "missing"})
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("first match of a filter", func(t *testing.T) {
		s := New(nil)
		seedStore(t, s)
		got, err := s.Load(ctx, testRef, &Query{
			Filter: map[string]any{"p1": "a"},
			Sort:   &Sort{Field: "p2", Desc: true},
		})
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got == nil || got.Fields["p2"] != float64(40) {
			t.Errorf("got %v, want p2=40", got)
		}
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("first match only by default", func(t *testing.T) {
		s := New(nil)
		seedStore(t, s)
		if _, err := s.Remove(ctx, testRef, &Query{Filter: map[string]any{"p1": "a"}}); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		got, _ := s.List(ctx, testRef, &Query{Filter: map[string]any{"p1": "a"}})
		if len(got) != 1 {
			t.Errorf("expected 1 remaining match, got %d", len(got))
		}
	})

	t.Run("all deletes every match", func(t *testing.T) {
		s := New(nil)
		seedStore(t, s)
		if _, err := s.Remove(ctx, testRef, &Query{Filter: map[string]any{"p1": "a"}, All: true}); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		got, _ := s.List(ctx, testRef, &Query{Filter: map[string]any{"p1": "a"}})
		if len(got) != 0 {
			t.Errorf("expected no matches left, got %d", len(got))
		}
		got, _ = s.List(ctx, testRef, nil)
		if len(got) != 2 {
			t.Errorf("expected 2 records left, got %d", len(got))
		}
	})

	t.Run("return deleted", func(t *testing.T) {
		s := New(nil)
		ids := seedStore(t, s)
		got, err := s.Remove(ctx, testRef, &Query{ID: ids[0], ReturnDeleted: true})
		if err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if got == nil || got.ID != ids[0] {
			t.Errorf("expected deleted record %q back, got %v", ids[0], got)
		}
	})

	t.Run("no return by default", func(t *testing.T) {
		s := New(nil)
		ids := seedStore(t, s)
		got, err := s.Remove(ctx, testRef, &Query{ID: ids[0]})
		if err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("removing nothing is a no-op", func(t *testing.T) {
		s := New(nil)
		seedStore(t, s)
		got, err := s.Remove(ctx, testRef, &Query{ID: "missing", ReturnDeleted: true})
		if err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %v", got)
		}
		all, _ := s.List(ctx, testRef, nil)
		if len(all) != 4 {
			t.Errorf("no-op remove changed the collection: %d records", len(all))
		}
	})
}
