// Package docdb is an embeddable, process-local document store.
//
// It maps typed collections to schemaless records and exposes a small
// query/filter/sort/paginate engine plus a create-or-update save protocol
// with optional conditional upsert. It is meant to stand in for a real
// backing store during development and testing: query semantics, id and
// merge policy, and error conditions mirror what a production store would
// provide, but all state is memory-resident and lost on process exit.
//
// A Store is safe for concurrent use. Every record handed to a caller is an
// independent copy; mutating it never affects stored state.
package docdb
