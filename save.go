// The save state machine: create vs update vs conditional upsert.

package docdb

import "context"

// saveOutcome tags the decision a save request resolved to.
type saveOutcome string

const (
	saveCreated       saveOutcome = "created"
	saveUpdated       saveOutcome = "updated"
	saveUpsertMatched saveOutcome = "matched"
)

// Save creates or updates one record.
//
// A draft without an id is new. On the create path an id is resolved
// (requested id, local generator, external Generator) and a record already
// stored under it is a DuplicateIDError. A draft with an id routes through
// the update path: the previous record is merged or replaced per the merge
// policy, and a missing previous record degrades to a plain write.
//
// When q carries a non-empty Upsert list and the draft is new, the first
// stored record whose values equal the draft's at every match field is
// updated in place and returned; if the draft is missing any match field or
// no record matches, the save falls through to an ordinary create.
//
// The returned record is always an independent copy of the committed state.
func (s *Store) Save(ctx context.Context, draft *Draft, q *Query) (*Record, error) {
	if draft == nil || draft.Fields == nil {
		return nil, ErrMissingDraft
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	ref := draft.Ref
	isNew := draft.ID == ""

	if isNew && q != nil && len(q.Upsert) > 0 && hasMatchFields(draft, q.Upsert) {
		if out := s.upsert(ref, draft, q.Upsert); out != nil {
			s.traceSave(ctx, ref, out.ID, saveUpsertMatched)
			return out, nil
		}
		// No match: fall through to an ordinary create.
	}

	if !isNew {
		out := s.update(ref, draft)
		s.traceSave(ctx, ref, out.ID, saveUpdated)
		return out, nil
	}

	// The external generator may block; resolve the id before entering the
	// critical section so unrelated collections keep making progress.
	id, err := s.resolveID(ctx, draft)
	if err != nil {
		return nil, err
	}
	out, err := s.create(ref, draft, id)
	if err != nil {
		return nil, err
	}
	s.traceSave(ctx, ref, out.ID, saveCreated)
	return out, nil
}

// upsert merges the draft's fields into the first record matching the match
// fields, in place. It returns nil when no record matches.
func (s *Store) upsert(ref CollectionRef, draft *Draft, match []string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.colls.findMatch(ref, draft.Fields, match)
	if r == nil {
		return nil
	}
	for k, v := range draft.Fields {
		r.Fields[k] = v
	}
	return r.Clone()
}

// update overwrites or merges the record under the draft's own id. There is
// no duplicate check and no not-found error: a first-time save with a
// caller-chosen id is an ordinary write.
func (s *Store) update(ref CollectionRef, draft *Draft) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Record{ID: draft.ID, Kind: ref.Kind(), Fields: cloneFields(draft.Fields)}
	if prev := s.colls.get(ref, draft.ID); prev != nil && s.mergeEnabled(draft) {
		merged := cloneFields(prev.Fields)
		for k, v := range draft.Fields {
			merged[k] = v
		}
		r.Fields = merged
	}
	s.colls.put(ref, r)
	return r.Clone()
}

// create commits a new record under id, failing on a duplicate. The
// existence check and the write are one critical section.
func (s *Store) create(ref CollectionRef, draft *Draft, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind := ref.Kind()
	if s.colls.get(ref, id) != nil {
		return nil, &DuplicateIDError{Kind: kind, ID: id}
	}
	r := &Record{ID: id, Kind: kind, Fields: cloneFields(draft.Fields)}
	s.colls.put(ref, r)
	return r.Clone(), nil
}

// mergeEnabled resolves the merge policy: the draft's explicit choice wins,
// otherwise the store default applies.
func (s *Store) mergeEnabled(draft *Draft) bool {
	if draft.Merge != nil {
		return *draft.Merge
	}
	return !s.cfg.DisableMerge
}

// hasMatchFields reports whether every match field is present in the
// draft's fields.
func hasMatchFields(draft *Draft, match []string) bool {
	for _, f := range match {
		if _, ok := draft.Fields[f]; !ok {
			return false
		}
	}
	return true
}

func (s *Store) traceSave(ctx context.Context, ref CollectionRef, id string, outcome saveOutcome) {
	s.log.DebugContext(ctx, "save",
		"kind", ref.Kind(),
		"id", id,
		"outcome", string(outcome))
}
