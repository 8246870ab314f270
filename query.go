// Query types and the record matcher.

package docdb

import (
	"cmp"
	"reflect"
)

// Query selects and shapes records for Load, List and Remove, and carries
// the upsert match fields for Save. The zero value selects every record in
// the collection.
//
// Selection is exclusive in this order: ID, IDs, Filter. Sort, Skip, Limit
// and Fields shape the result after selection. A present Limit of 0 returns
// no records; a nil Limit returns all. A non-nil Fields list projects each
// returned record down to "id" plus the named fields; a nil Fields list
// returns records unprojected.
type Query struct {
	ID     string         `json:"id,omitempty"`
	IDs    []string       `json:"ids,omitempty"`
	Filter map[string]any `json:"filter,omitempty"`

	Sort   *Sort    `json:"sort,omitempty"`
	Skip   int      `json:"skip,omitempty"`
	Limit  *int     `json:"limit,omitempty"`
	Fields []string `json:"fields,omitempty"`

	// All makes Remove delete every matching record instead of the first.
	All bool `json:"all,omitempty"`
	// ReturnDeleted makes Remove return the single deleted record.
	ReturnDeleted bool `json:"return_deleted,omitempty"`
	// Upsert lists the match fields for a conditional upsert on Save. It is
	// only honored for drafts without an id.
	Upsert []string `json:"upsert,omitempty"`
}

// Sort orders results by one field.
type Sort struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

// Filter operators. A filter value that is a map is treated as a set of
// operator constraints on the field; map keys that are not operators are
// ignored so filter specs stay forward-compatible.
const (
	opNotEqual     = "$ne"
	opGreaterEqual = "$gte"
	opGreaterThan  = "$gt"
	opLessThan     = "$lt"
	opLessEqual    = "$lte"
	opIn           = "$in"
	opNotIn        = "$nin"
)

// matches reports whether the record satisfies every constraint in the
// filter. It is a pure predicate: filter keys never select fields to return.
func matches(r *Record, filter map[string]any) bool {
	for field, want := range filter {
		got, _ := r.Field(field)
		if !matchValue(got, want) {
			return false
		}
	}
	return true
}

func matchValue(got, want any) bool {
	if ops, ok := want.(map[string]any); ok {
		return matchOperators(got, ops)
	}
	if elems, ok := asSlice(want); ok {
		// Array filter value: membership test.
		for _, e := range elems {
			if equalValues(got, e) {
				return true
			}
		}
		return false
	}
	return equalValues(got, want)
}

// matchOperators evaluates each present operator; the first failing one
// short-circuits to no match.
func matchOperators(got any, ops map[string]any) bool {
	for op, operand := range ops {
		switch op {
		case opNotEqual:
			if equalValues(got, operand) {
				return false
			}
		case opGreaterEqual:
			if compareValues(operand, got) > 0 {
				return false
			}
		case opGreaterThan:
			if compareValues(operand, got) >= 0 {
				return false
			}
		case opLessThan:
			if compareValues(operand, got) <= 0 {
				return false
			}
		case opLessEqual:
			if compareValues(operand, got) < 0 {
				return false
			}
		case opIn:
			elems, _ := asSlice(operand)
			if !containsValue(elems, got) {
				return false
			}
		case opNotIn:
			elems, _ := asSlice(operand)
			if containsValue(elems, got) {
				return false
			}
		default:
			// Unknown operators never cause a non-match.
		}
	}
	return true
}

func containsValue(elems []any, v any) bool {
	for _, e := range elems {
		if equalValues(v, e) {
			return true
		}
	}
	return false
}

// equalValues is strict equality with one carve-out: numeric values compare
// numerically across int and float64, since JSON decoding and Go literals
// produce both for the same logical number.
func equalValues(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// compareValues compares two values, returning -1, 0, or 1. Values of
// incomparable kinds compare as equal.
func compareValues(a, b any) int {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
		return 0
	}
	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return cmp.Compare(va, vb)
		}
	case bool:
		if vb, ok := b.(bool); ok {
			switch {
			case va == vb:
				return 0
			case !va:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []float64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}
