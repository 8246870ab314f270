// Tests for store lifecycle and tracing.

package docdb

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestClose(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	seedStore(t, s)
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if _, err := s.Save(ctx, &Draft{Ref: testRef, Fields: map[string]any{}}, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("save after close: got %v, want ErrClosed", err)
	}
	if _, err := s.Load(ctx, testRef, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("load after close: got %v, want ErrClosed", err)
	}
	if _, err := s.List(ctx, testRef, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("list after close: got %v, want ErrClosed", err)
	}
	if _, err := s.Remove(ctx, testRef, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("remove after close: got %v, want ErrClosed", err)
	}
	if _, err := s.Dump(); !errors.Is(err, ErrClosed) {
		t.Errorf("dump after close: got %v, want ErrClosed", err)
	}
	if err := s.Import([]byte("{}"), false); !errors.Is(err, ErrClosed) {
		t.Errorf("import after close: got %v, want ErrClosed", err)
	}
}

func TestTraceEvents(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := New(&Config{Logger: logger})

	r, err := s.Save(ctx, &Draft{Ref: testRef, Fields: map[string]any{"p1": "v"}}, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := s.Load(ctx, testRef, &Query{ID: r.ID}); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, err := s.List(ctx, testRef, nil); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if _, err := s.Remove(ctx, testRef, &Query{ID: r.ID}); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"msg=save", "outcome=created", "msg=load", "msg=list", "msg=remove", "msg=close"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %q:\n%s", want, out)
		}
	}
}

func TestConcurrentSavesSameID(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	const n = 32
	errs := make(chan error, n)
	for range n {
		go func() {
			_, err := s.Save(ctx, &Draft{Ref: testRef, RequestedID: "contended", Fields: map[string]any{"p": 1}}, nil)
			errs <- err
		}()
	}
	created := 0
	for range n {
		err := <-errs
		var dup *DuplicateIDError
		switch {
		case err == nil:
			created++
		case errors.As(err, &dup):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Errorf("expected exactly one successful create, got %d", created)
	}
	all, err := s.List(ctx, testRef, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 record, got %d", len(all))
	}
}
