// Package atomic implements the JSON:API atomic-operations engine: parsing
// and validating an operations document, resolving batch-local ids, binding
// operations to per-type handler capabilities, and executing the batch
// in order inside a single transaction.
package atomic

import (
	"fmt"

	"github.com/mwhitworth/stagehand/internal/jsonapi"
	"github.com/mwhitworth/stagehand/internal/schema"
)

// OperationKind is the resolved semantic of one batch entry.
type OperationKind int

const (
	OpCreateResource OperationKind = iota
	OpUpdateResource
	OpDeleteResource
	OpAddToRelationship
	OpSetRelationship
	OpRemoveFromRelationship
)

// String returns the kind's name for logs and errors.
func (k OperationKind) String() string {
	switch k {
	case OpCreateResource:
		return "create resource"
	case OpUpdateResource:
		return "update resource"
	case OpDeleteResource:
		return "delete resource"
	case OpAddToRelationship:
		return "add to relationship"
	case OpSetRelationship:
		return "set relationship"
	case OpRemoveFromRelationship:
		return "remove from relationship"
	default:
		return fmt.Sprintf("operation kind %d", int(k))
	}
}

// Reference points at a resource by id or by batch-local id. After local-id
// resolution during execution, ID is always set.
type Reference struct {
	Type string
	ID   string
	LID  string
}

// Linkage is validated relationship data. To-one linkage holds zero (null)
// or one reference; to-many linkage holds the full ordered list.
type Linkage struct {
	Many bool
	Refs []Reference
}

// Data returns the linkage in its wire form.
func (l Linkage) Data() jsonapi.RelationshipData {
	if l.Many {
		items := make([]jsonapi.ResourceIdentifier, 0, len(l.Refs))
		for _, ref := range l.Refs {
			items = append(items, jsonapi.ResourceIdentifier{Type: ref.Type, ID: ref.ID})
		}
		return jsonapi.RelationshipData{Many: true, Items: items}
	}
	if len(l.Refs) == 0 {
		return jsonapi.RelationshipData{}
	}
	return jsonapi.RelationshipData{One: &jsonapi.ResourceIdentifier{Type: l.Refs[0].Type, ID: l.Refs[0].ID}}
}

// Resource is the materialized subject of an operation: the parsed and
// validated form of a resource object payload.
type Resource struct {
	Type          string
	ID            string
	LID           string
	Attributes    map[string]any
	Relationships map[string]Linkage
}

// Object returns the resource in its wire form, with relationship linkage
// included when present.
func (r *Resource) Object() *jsonapi.ResourceObject {
	obj := &jsonapi.ResourceObject{Type: r.Type, ID: r.ID}
	if len(r.Attributes) > 0 {
		obj.Attributes = r.Attributes
	}
	if len(r.Relationships) > 0 {
		obj.Relationships = make(map[string]jsonapi.RelationshipObject, len(r.Relationships))
		for name, linkage := range r.Relationships {
			obj.Relationships[name] = jsonapi.RelationshipObject{HasData: true, Data: linkage.Data()}
		}
	}
	return obj
}

// TargetedFields names the attributes and relationships an operation actually
// supplies. Handlers mutate only these and leave everything else untouched.
type TargetedFields struct {
	Attributes    []string
	Relationships []string
}

// HasAttribute reports whether the named attribute is targeted.
func (f TargetedFields) HasAttribute(name string) bool {
	for _, a := range f.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// HasRelationship reports whether the named relationship is targeted.
func (f TargetedFields) HasRelationship(name string) bool {
	for _, r := range f.Relationships {
		if r == name {
			return true
		}
	}
	return false
}

// OperationContainer is the validated and resolved form of one batch entry.
// Containers are immutable once validation completes, except for the
// local-id substitutions the executor applies in document order.
type OperationContainer struct {
	Index        int
	Kind         OperationKind
	Type         *schema.ResourceType
	Relationship *schema.Relationship // set for relationship-targeting kinds
	Secondary    *schema.ResourceType // relationship target type
	Subject      *Resource
	Fields       TargetedFields

	// Payload carries the relationship data of Add/Set/Remove operations.
	Payload Linkage

	capability any    // bound by the resolver before execution
	ptr        string // JSON pointer of the originating entry, "" outside a batch
}

// entryPointer is the JSON pointer prefix for the i-th batch entry.
func entryPointer(index int) string {
	return fmt.Sprintf("/atomic:operations[%d]", index)
}
