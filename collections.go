// The nested collection map: namespace -> collection -> id -> Record.

package docdb

import (
	"slices"
)

// Snapshot is the full structure of a store: namespace, collection, id.
// It is the unit of Dump, Export and Import.
type Snapshot map[string]map[string]map[string]*Record

// Clone returns a deep copy of the Snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for ns, colls := range s {
		nsOut := make(map[string]map[string]*Record, len(colls))
		for name, records := range colls {
			collOut := make(map[string]*Record, len(records))
			for id, r := range records {
				collOut[id] = r.Clone()
			}
			nsOut[name] = collOut
		}
		out[ns] = nsOut
	}
	return out
}

// collections owns the nested mapping. It performs no locking; the Store
// serializes access around it.
type collections struct {
	data Snapshot
}

func newCollections() collections {
	return collections{data: Snapshot{}}
}

// get returns the live stored record, or nil. Callers must clone before
// releasing the record outside the Store's lock.
func (c *collections) get(ref CollectionRef, id string) *Record {
	colls, ok := c.data[ref.Namespace]
	if !ok {
		return nil
	}
	records, ok := colls[ref.Collection]
	if !ok {
		return nil
	}
	return records[id]
}

// put stores the record under its id, creating the namespace and collection
// levels lazily.
func (c *collections) put(ref CollectionRef, r *Record) {
	colls, ok := c.data[ref.Namespace]
	if !ok {
		colls = map[string]map[string]*Record{}
		c.data[ref.Namespace] = colls
	}
	records, ok := colls[ref.Collection]
	if !ok {
		records = map[string]*Record{}
		colls[ref.Collection] = records
	}
	records[r.ID] = r
}

// delete removes the record under id. Deleting a missing record is a no-op.
func (c *collections) delete(ref CollectionRef, id string) {
	if colls, ok := c.data[ref.Namespace]; ok {
		delete(colls[ref.Collection], id)
	}
}

// scan returns clones of every record in the collection, ordered by id.
// With generated ids that order is creation order. A missing namespace or
// collection scans as empty.
func (c *collections) scan(ref CollectionRef) []*Record {
	colls, ok := c.data[ref.Namespace]
	if !ok {
		return nil
	}
	records := colls[ref.Collection]
	if len(records) == 0 {
		return nil
	}
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Record, len(ids))
	for i, id := range ids {
		out[i] = records[id].Clone()
	}
	return out
}

// findMatch returns the first live record whose values equal the draft's
// values at every match field, in scan order.
func (c *collections) findMatch(ref CollectionRef, fields map[string]any, match []string) *Record {
	colls, ok := c.data[ref.Namespace]
	if !ok {
		return nil
	}
	records := colls[ref.Collection]
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		r := records[id]
		found := true
		for _, f := range match {
			got, _ := r.Field(f)
			if !equalValues(got, fields[f]) {
				found = false
				break
			}
		}
		if found {
			return r
		}
	}
	return nil
}

// snapshot returns a deep copy of the whole structure.
func (c *collections) snapshot() Snapshot {
	return c.data.Clone()
}

// replaceAll swaps the whole structure for a deep copy of snap.
func (c *collections) replaceAll(snap Snapshot) {
	c.data = snap.Clone()
	if c.data == nil {
		c.data = Snapshot{}
	}
}

// mergeAll overlays snap onto the current structure: records overwrite by
// id, untouched collections survive.
func (c *collections) mergeAll(snap Snapshot) {
	for ns, colls := range snap {
		for name, records := range colls {
			ref := CollectionRef{Namespace: ns, Collection: name}
			for _, r := range records {
				c.put(ref, r.Clone())
			}
		}
	}
}
