// HTTP handlers for the store operations.

package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/maruel/docdb"
	"github.com/maruel/docdb/internal/server/dto"
)

// maxBodySize caps request bodies; the store is a dev tool, not a bulk
// loader.
const maxBodySize = 16 << 20

type handlers struct {
	store   *docdb.Store
	version string
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &dto.HealthResponse{Status: "ok", Version: h.version})
}

func (h *handlers) save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	draft := &docdb.Draft{
		Ref:         refFromPath(r),
		ID:          req.ID,
		RequestedID: req.RequestedID,
		Fields:      req.Fields,
		Merge:       req.Merge,
	}
	draft.Ref.Zone = req.Zone
	record, err := h.store.Save(r.Context(), draft, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &dto.RecordResponse{Record: record})
}

func (h *handlers) loadByID(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.Load(r.Context(), refFromPath(r), &docdb.Query{ID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	if record == nil {
		writeError(w, dto.NotFound("record not found"))
		return
	}
	writeJSON(w, http.StatusOK, &dto.RecordResponse{Record: record})
}

func (h *handlers) load(w http.ResponseWriter, r *http.Request) {
	var req dto.QueryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	record, err := h.store.Load(r.Context(), refFromPath(r), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &dto.RecordResponse{Record: record})
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	var req dto.QueryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	records, err := h.store.List(r.Context(), refFromPath(r), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []*docdb.Record{}
	}
	writeJSON(w, http.StatusOK, &dto.ListResponse{Records: records, Count: len(records)})
}

func (h *handlers) remove(w http.ResponseWriter, r *http.Request) {
	var req dto.QueryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	record, err := h.store.Remove(r.Context(), refFromPath(r), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &dto.RecordResponse{Record: record})
}

func (h *handlers) dump(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Dump()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Export()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (h *handlers) importSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, dto.BadRequest("reading body: "+err.Error()))
		return
	}
	merge := r.URL.Query().Get("merge") == "true"
	if err := h.store.Import(data, merge); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &dto.ImportResponse{Merged: merge})
}

// refFromPath builds the collection ref from the URL. The namespace path
// segment "-" means the empty namespace.
func refFromPath(r *http.Request) docdb.CollectionRef {
	ns := r.PathValue("namespace")
	if ns == "-" {
		ns = ""
	}
	return docdb.CollectionRef{Namespace: ns, Collection: r.PathValue("collection")}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return dto.BadRequest("decoding body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	apiErr := dto.FromStoreError(err)
	writeJSON(w, apiErr.Status, map[string]*dto.APIError{"error": apiErr})
}
