// Load, List and Remove: selection through the result pipeline.

package docdb

import "context"

// List returns every record matching q, shaped by the result pipeline. A
// nil q returns the whole collection. Missing namespaces and collections
// list as empty, never as an error.
func (s *Store) List(ctx context.Context, ref CollectionRef, q *Query) ([]*Record, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	records := s.selectRecords(ref, q)
	s.mu.RUnlock()
	records = applyQuery(records, q)
	s.log.DebugContext(ctx, "list", "kind", ref.Kind(), "count", len(records))
	return records, nil
}

// Load returns the first record matching q, or nil when nothing matches.
func (s *Store) Load(ctx context.Context, ref CollectionRef, q *Query) (*Record, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	records := s.selectRecords(ref, q)
	s.mu.RUnlock()
	records = applyQuery(records, q)
	var out *Record
	if len(records) > 0 {
		out = records[0]
	}
	id := ""
	if out != nil {
		id = out.ID
	}
	s.log.DebugContext(ctx, "load", "kind", ref.Kind(), "id", id, "found", out != nil)
	return out, nil
}

// Remove deletes the first record matching q, or every match when q.All is
// set. It returns the deleted record when q.ReturnDeleted is set and
// exactly one record was targeted, otherwise nil. Deleting nothing is not
// an error.
func (s *Store) Remove(ctx context.Context, ref CollectionRef, q *Query) (*Record, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	records := applyQuery(s.selectRecords(ref, q), q)
	var out *Record
	n := 0
	if q != nil && q.All {
		for _, r := range records {
			s.colls.delete(ref, r.ID)
		}
		n = len(records)
	} else if len(records) > 0 {
		s.colls.delete(ref, records[0].ID)
		n = 1
		if q != nil && q.ReturnDeleted {
			out = records[0]
		}
	}
	s.mu.Unlock()
	s.log.DebugContext(ctx, "remove", "kind", ref.Kind(), "count", n)
	return out, nil
}

// selectRecords materializes the selection step as clones: a single id, a
// list of ids in the order given, or a filter scan. Must be called with the
// store lock held.
func (s *Store) selectRecords(ref CollectionRef, q *Query) []*Record {
	if q != nil && q.ID != "" {
		if r := s.colls.get(ref, q.ID); r != nil {
			return []*Record{r.Clone()}
		}
		return nil
	}
	if q != nil && len(q.IDs) > 0 {
		out := make([]*Record, 0, len(q.IDs))
		for _, id := range q.IDs {
			if r := s.colls.get(ref, id); r != nil {
				out = append(out, r.Clone())
			}
		}
		return out
	}
	records := s.colls.scan(ref)
	if q == nil || len(q.Filter) == 0 {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if matches(r, q.Filter) {
			out = append(out, r)
		}
	}
	return out
}
