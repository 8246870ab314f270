// Whole-store administration: dump, export, import.

package docdb

import (
	"encoding/json"
	"fmt"
)

// Dump returns a deep copy of the whole store.
func (s *Store) Dump() (Snapshot, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.colls.snapshot(), nil
}

// Export serializes the whole store as structural JSON. JSON object keys
// marshal sorted, so the output is stable for identical stores.
func (s *Store) Export() ([]byte, error) {
	snap, err := s.Dump()
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

// Import loads a serialized snapshot. With merge set the snapshot is
// structurally merged onto the current state (records overwrite by id,
// untouched collections survive), otherwise it replaces the store
// atomically.
func (s *Store) Import(data []byte, merge bool) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("importing snapshot: %w", err)
	}
	// The map key is authoritative for the record id.
	for ns, colls := range snap {
		for name, records := range colls {
			ref := CollectionRef{Namespace: ns, Collection: name}
			for id, r := range records {
				if r == nil {
					r = &Record{}
					records[id] = r
				}
				r.ID = id
				if r.Kind == "" {
					r.Kind = ref.Kind()
				}
				if r.Fields == nil {
					r.Fields = map[string]any{}
				}
			}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if merge {
		s.colls.mergeAll(snap)
	} else {
		s.colls.replaceAll(snap)
	}
	return nil
}
