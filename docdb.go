package docdb

import (
	"context"
	"log/slog"
	"sync"
)

// Config tunes a Store. The zero value is usable: merge-enabled saves and
// ksid-generated ids.
type Config struct {
	// DisableMerge makes ordinary saves over an existing record replace it
	// instead of overlaying the draft's fields. A draft's Merge field
	// overrides this per save.
	DisableMerge bool

	// GenerateID is the local id generator, consulted on the create path
	// when the draft carries no requested id. An empty result falls through
	// to Generator. nil defaults to KSID.
	GenerateID func(*Draft) string

	// Generator is the external id-generation fallback. nil falls back to
	// KSID.
	Generator Generator

	// Logger receives Debug-level trace events for save/load/list/remove/
	// close. nil uses slog.Default(). Tracing has no behavioral effect.
	Logger *slog.Logger
}

// Store is a process-local document store. All methods are safe for
// concurrent use. State is memory-resident only.
type Store struct {
	cfg Config
	log *slog.Logger

	mu     sync.RWMutex
	colls  collections
	closed bool
}

// New creates an empty Store.
func New(cfg *Config) *Store {
	s := &Store{colls: newCollections()}
	if cfg != nil {
		s.cfg = *cfg
	}
	s.log = s.cfg.Logger
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Close marks the store closed. Subsequent operations return ErrClosed. The
// stored data is released; Close never fails.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.colls = newCollections()
	s.mu.Unlock()
	s.log.DebugContext(ctx, "close")
	return nil
}

// checkOpen is called with no lock held; closing concurrently with an
// in-flight operation is indistinguishable from closing just after it.
func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
