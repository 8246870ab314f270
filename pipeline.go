// Result shaping: sort, skip, limit, and field projection.

package docdb

import "slices"

// applyQuery shapes already-selected records in a fixed order: sort, skip,
// limit, then projection. Projection runs last so projected-away fields can
// still participate in sorting. The input records are owned by the caller
// (they are copies); shaping mutates the slice, never the store.
func applyQuery(records []*Record, q *Query) []*Record {
	if q == nil {
		return records
	}
	if q.Sort != nil && q.Sort.Field != "" {
		sortRecords(records, q.Sort)
	}
	if q.Skip > 0 {
		if q.Skip >= len(records) {
			records = records[:0]
		} else {
			records = records[q.Skip:]
		}
	}
	if q.Limit != nil {
		n := max(*q.Limit, 0)
		if n < len(records) {
			records = records[:n]
		}
	}
	if q.Fields != nil {
		for i, r := range records {
			records[i] = projectRecord(r, q.Fields)
		}
	}
	return records
}

func sortRecords(records []*Record, s *Sort) {
	slices.SortStableFunc(records, func(a, b *Record) int {
		va, _ := a.Field(s.Field)
		vb, _ := b.Field(s.Field)
		c := compareValues(va, vb)
		if s.Desc {
			return -c
		}
		return c
	})
}

// projectRecord keeps "id" unconditionally plus any field named in fields,
// and drops everything else.
func projectRecord(r *Record, fields []string) *Record {
	p := &Record{ID: r.ID, Kind: r.Kind, Fields: make(map[string]any, len(fields))}
	for _, f := range fields {
		if f == "id" {
			continue
		}
		if v, ok := r.Fields[f]; ok {
			p.Fields[f] = v
		}
	}
	return p
}
