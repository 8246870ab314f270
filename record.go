package docdb

// CollectionRef identifies one collection. Namespace may be empty. Zone is
// only forwarded to an external id Generator and is not part of the store
// key.
type CollectionRef struct {
	Zone       string `json:"zone,omitempty"`
	Namespace  string `json:"namespace,omitempty"`
	Collection string `json:"collection"`
}

// Kind returns the entity type tag for records in this collection. An empty
// namespace is rendered as "-" so the tag stays unambiguous.
func (c CollectionRef) Kind() string {
	ns := c.Namespace
	if ns == "" {
		ns = "-"
	}
	return ns + "/" + c.Collection
}

// Record is one stored document: a string id, an entity type tag, and
// arbitrary schemaless fields.
type Record struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind,omitempty"`
	Fields map[string]any `json:"fields"`
}

// Clone returns a deep copy of the Record. Field values themselves are
// copied shallowly; stored records never share the Fields map with callers.
func (r *Record) Clone() *Record {
	c := *r
	c.Fields = cloneFields(r.Fields)
	return &c
}

// Field returns the named field value. The id is addressable as "id" so
// filters and projections can reference it like any other field.
func (r *Record) Field(name string) (any, bool) {
	if name == "id" {
		return r.ID, true
	}
	v, ok := r.Fields[name]
	return v, ok
}

// Draft is a caller-supplied record pending save.
//
// A draft with a non-empty ID routes through the update path, even when no
// record exists yet under that id: the save degrades to a plain overwrite
// without duplicate detection. This is intentional so callers that
// pre-assign ids keep working. A draft that wants a caller-chosen id with
// duplicate detection leaves ID empty and sets RequestedID instead.
type Draft struct {
	Ref         CollectionRef  `json:"ref"`
	ID          string         `json:"id,omitempty"`
	RequestedID string         `json:"requested_id,omitempty"`
	Fields      map[string]any `json:"fields"`

	// Merge overrides the store-level merge policy for this save only.
	// nil inherits the Config default.
	Merge *bool `json:"merge,omitempty"`
}

func cloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	c := make(map[string]any, len(fields))
	for k, v := range fields {
		c[k] = v
	}
	return c
}
