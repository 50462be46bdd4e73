// Package model defines the document and report types shared by the
// integrity engine components.
package model

import (
	"encoding/json"
	"fmt"
)

// ValueKind discriminates the variant held by a MetadataValue.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// MetadataValue is a tagged union over the scalar types a metadata field
// may hold. Records arrive from loosely typed stores, so every value is
// one of string, number, bool, or null; explicit conversion rules live
// in the normalizer rather than in call sites doing type assertions.
type MetadataValue struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

// String constructs a string-valued MetadataValue.
func String(s string) MetadataValue { return MetadataValue{Kind: KindString, Str: s} }

// Number constructs a number-valued MetadataValue.
func Number(n float64) MetadataValue { return MetadataValue{Kind: KindNumber, Num: n} }

// Boolean constructs a bool-valued MetadataValue.
func Boolean(b bool) MetadataValue { return MetadataValue{Kind: KindBool, Bool: b} }

// Null constructs a null MetadataValue.
func Null() MetadataValue { return MetadataValue{Kind: KindNull} }

// IsEmpty reports whether the value is null or a blank string. Empty
// values do not satisfy required-field checks.
func (v MetadataValue) IsEmpty() bool {
	return v.Kind == KindNull || (v.Kind == KindString && v.Str == "")
}

// Interface returns the underlying value as an any, suitable for
// loosely typed conversion helpers.
func (v MetadataValue) Interface() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	default:
		return nil
	}
}

// MarshalJSON writes the bare scalar, matching the wire shape of the
// document stores the engine reads from.
func (v MetadataValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts any JSON scalar. Arrays and objects are
// rejected: metadata values are scalars by contract.
func (v *MetadataValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(t)
	case float64:
		*v = Number(t)
	case bool:
		*v = Boolean(t)
	default:
		return fmt.Errorf("model: metadata value must be a scalar, got %T", raw)
	}
	return nil
}

// DocumentRecord is one document submitted for integrity assessment.
// Records are owned by the caller; the engine never mutates them.
type DocumentRecord struct {
	ID        string                   `json:"id"`
	Content   string                   `json:"content"`
	Metadata  map[string]MetadataValue `json:"metadata,omitempty"`
	Timestamp string                   `json:"timestamp,omitempty"`
	Category  string                   `json:"category,omitempty"`
	Source    string                   `json:"source,omitempty"`
	Priority  int                      `json:"priority,omitempty"`
	Tags      []string                 `json:"tags,omitempty"`
}

// Field resolves a named field against the record, checking the typed
// fields first and falling back to the metadata map. The bool reports
// whether the field is present and non-empty.
func (r DocumentRecord) Field(name string) (MetadataValue, bool) {
	var v MetadataValue
	switch name {
	case "id":
		v = String(r.ID)
	case "content":
		v = String(r.Content)
	case "timestamp":
		v = String(r.Timestamp)
	case "category":
		v = String(r.Category)
	case "source":
		v = String(r.Source)
	case "priority":
		if r.Priority == 0 {
			v = Null()
		} else {
			v = Number(float64(r.Priority))
		}
	default:
		mv, ok := r.Metadata[name]
		if !ok {
			return Null(), false
		}
		v = mv
	}
	return v, !v.IsEmpty()
}

// MetadataSnapshot returns a copy of the record's metadata map for
// embedding in an immutable ValidationResult.
func (r DocumentRecord) MetadataSnapshot() map[string]MetadataValue {
	if len(r.Metadata) == 0 {
		return nil
	}
	snap := make(map[string]MetadataValue, len(r.Metadata))
	for k, v := range r.Metadata {
		snap[k] = v
	}
	return snap
}
