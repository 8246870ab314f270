// Id acquisition: requested id, local generator, remote fallback.

package docdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/maruel/ksid"
)

// Generator is an external id-generation collaborator. It is consulted on
// the create path when no requested id was supplied and no local generator
// produced one. It may involve latency or failure; the Store awaits it
// without holding the store lock.
type Generator interface {
	GenerateID(ctx context.Context, ref CollectionRef) (string, error)
}

// KSID returns a time-sortable ksid string. It is the default local id
// generator: ids sort lexicographically in creation order.
func KSID(*Draft) string {
	return ksid.NewID().String()
}

// UUID returns a random UUIDv4 string, for callers that need ids
// indistinguishable from a production store using UUIDs.
func UUID(*Draft) string {
	return uuid.NewString()
}

// resolveID applies the ordered id-acquisition policy: the draft's requested
// id, then the configured local generator, then the remote Generator.
func (s *Store) resolveID(ctx context.Context, draft *Draft) (string, error) {
	if draft.RequestedID != "" {
		return draft.RequestedID, nil
	}
	if s.cfg.GenerateID != nil {
		if id := s.cfg.GenerateID(draft); id != "" {
			return id, nil
		}
	}
	if s.cfg.Generator == nil {
		return KSID(draft), nil
	}
	id, err := s.cfg.Generator.GenerateID(ctx, draft.Ref)
	if err != nil {
		return "", &IDGenerationError{Ref: draft.Ref, Err: err}
	}
	if id == "" {
		return "", &IDGenerationError{Ref: draft.Ref, Err: errEmptyGeneratedID}
	}
	return id, nil
}
