// Package dto defines the dev server's request/response types and its
// structured error envelope. It is the API contract layer; conversion to
// library types happens in the handlers package.
package dto

import "github.com/maruel/docdb"

// SaveRequest is the body of a save call. Namespace and collection come
// from the URL.
type SaveRequest struct {
	ID          string         `json:"id,omitempty"`
	RequestedID string         `json:"requested_id,omitempty"`
	Zone        string         `json:"zone,omitempty"`
	Fields      map[string]any `json:"fields"`
	Merge       *bool          `json:"merge,omitempty"`
	Query       *docdb.Query   `json:"query,omitempty"`
}

// QueryRequest is the body of a load, list or remove call.
type QueryRequest struct {
	Query *docdb.Query `json:"query,omitempty"`
}

// RecordResponse wraps a single record; Record is null when nothing
// matched.
type RecordResponse struct {
	Record *docdb.Record `json:"record"`
}

// ListResponse wraps a list result.
type ListResponse struct {
	Records []*docdb.Record `json:"records"`
	Count   int             `json:"count"`
}

// ImportResponse reports an accepted import.
type ImportResponse struct {
	Merged bool `json:"merged"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
