package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Operation codes defined by the atomic operations extension.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
)

// OperationsDocument is the request body of the operations endpoint: an
// ordered list of operations under the extension's namespaced member.
type OperationsDocument struct {
	Operations []Operation `json:"atomic:operations"`
}

// Operation is one raw entry of an operations document. Data stays raw until
// the parser decodes it, because its shape (object, array, or null) depends
// on the operation's target.
type Operation struct {
	Op   string          `json:"op"`
	Ref  *Ref            `json:"ref,omitempty"`
	Href string          `json:"href,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Ref targets an existing or batch-local resource, optionally naming a
// relationship on it.
type Ref struct {
	Type         string `json:"type,omitempty"`
	ID           string `json:"id,omitempty"`
	LID          string `json:"lid,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// ResourceObject is the wire form of a single resource.
type ResourceObject struct {
	Type          string                        `json:"type"`
	ID            string                        `json:"id,omitempty"`
	LID           string                        `json:"lid,omitempty"`
	Attributes    map[string]any                `json:"attributes,omitempty"`
	Relationships map[string]RelationshipObject `json:"relationships,omitempty"`
}

// ResourceIdentifier names a resource by type and exactly one of id or lid.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	LID  string `json:"lid,omitempty"`
}

// RelationshipObject is the value of one entry in a resource object's
// relationships map. HasData distinguishes an absent data member from an
// explicit null.
type RelationshipObject struct {
	Data    RelationshipData
	HasData bool
}

// UnmarshalJSON decodes a relationship object, tracking whether the data
// member was present at all.
func (r *RelationshipObject) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Data == nil {
		r.HasData = false
		return nil
	}
	r.HasData = true
	return r.Data.UnmarshalJSON(raw.Data)
}

// MarshalJSON encodes the relationship object with its data member.
func (r RelationshipObject) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Data RelationshipData `json:"data"`
	}{r.Data})
}

// RelationshipData is the linkage of a relationship: null, a single resource
// identifier, or an array of them. Many records whether the JSON was an
// array, which drives arity checks even for empty arrays.
type RelationshipData struct {
	Many  bool
	One   *ResourceIdentifier
	Items []ResourceIdentifier
}

// UnmarshalJSON decodes null, a single identifier, or an identifier array.
func (d *RelationshipData) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = RelationshipData{}
		return nil
	}
	if trimmed[0] == '[' {
		var items []ResourceIdentifier
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*d = RelationshipData{Many: true, Items: items}
		return nil
	}
	var one ResourceIdentifier
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*d = RelationshipData{One: &one}
	return nil
}

// MarshalJSON encodes the linkage back into its wire shape.
func (d RelationshipData) MarshalJSON() ([]byte, error) {
	if d.Many {
		if d.Items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(d.Items)
	}
	if d.One == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.One)
}

// PrimaryData is the decoded data member of an operation or a resource
// document: absent, null, a single resource object, or an array of them.
type PrimaryData struct {
	Present bool
	Many    bool
	One     *ResourceObject
	Items   []ResourceObject
}

// DecodePrimaryData decodes a raw data member. A nil input means the member
// was absent.
func DecodePrimaryData(raw json.RawMessage) (PrimaryData, error) {
	if raw == nil {
		return PrimaryData{}, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return PrimaryData{Present: true}, nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []ResourceObject
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return PrimaryData{}, fmt.Errorf("decode data array: %w", err)
		}
		return PrimaryData{Present: true, Many: true, Items: items}, nil
	}
	var one ResourceObject
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return PrimaryData{}, fmt.Errorf("decode data object: %w", err)
	}
	return PrimaryData{Present: true, One: &one}, nil
}

// Implementation is the jsonapi member describing the protocol version and
// the extensions active on a response.
type Implementation struct {
	Version string   `json:"version"`
	Ext     []string `json:"ext,omitempty"`
}

// BaseImplementation returns the jsonapi member for regular responses.
func BaseImplementation() *Implementation {
	return &Implementation{Version: "1.1"}
}

// AtomicImplementation returns the jsonapi member for operations responses.
func AtomicImplementation() *Implementation {
	return &Implementation{Version: "1.1", Ext: []string{ExtAtomicOperations}}
}

// ResourceDocument is a document whose primary data is one resource.
type ResourceDocument struct {
	JSONAPI *Implementation `json:"jsonapi,omitempty"`
	Data    *ResourceObject `json:"data"`
}

// LinkageDocument is a document whose primary data is relationship linkage.
type LinkageDocument struct {
	JSONAPI *Implementation  `json:"jsonapi,omitempty"`
	Data    RelationshipData `json:"data"`
}

// OperationResult is one positional entry of an atomic results array. A nil
// *OperationResult marshals as a null entry.
type OperationResult struct {
	Data *ResourceObject `json:"data"`
}

// ResultsDocument is the 200 response body of the operations endpoint.
type ResultsDocument struct {
	JSONAPI *Implementation    `json:"jsonapi,omitempty"`
	Results []*OperationResult `json:"atomic:results"`
}
