// Package schema holds the immutable resource-type metadata the server is
// configured with at startup. Descriptors are built once, validated by
// NewRegistry, and shared read-only by every concurrent request.
package schema

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// FieldCaps is a capability bitset describing which mutations may supply a
// field.
type FieldCaps uint8

const (
	// CapCreate allows the field in create payloads.
	CapCreate FieldCaps = 1 << iota
	// CapUpdate allows the field in update payloads.
	CapUpdate
)

// Has reports whether every capability in want is present.
func (c FieldCaps) Has(want FieldCaps) bool {
	return c&want == want
}

// IDKind identifies how a resource type's identities are represented.
type IDKind int

const (
	// IDInt64 identities are decimal integers assigned by the server.
	IDInt64 IDKind = iota
	// IDUUID identities are RFC 4122 UUID strings.
	IDUUID
)

// ParseID checks that raw is a well-formed identity of this kind and returns
// its canonical string form. The returned error carries the underlying
// conversion failure text.
func (k IDKind) ParseID(raw string) (string, error) {
	switch k {
	case IDInt64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case IDUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return "", err
		}
		return id.String(), nil
	default:
		return "", fmt.Errorf("unknown id kind %d", k)
	}
}

// RelationshipKind is the arity of a relationship.
type RelationshipKind int

const (
	// ToOne relates a resource to at most one other resource.
	ToOne RelationshipKind = iota
	// ToMany relates a resource to an ordered set of other resources.
	ToMany
)

// Attribute describes one attribute of a resource type.
type Attribute struct {
	Name      string
	Caps      FieldCaps
	Required  bool
	MaxLength int // 0 means unlimited
}

// Relationship describes one relationship of a resource type.
type Relationship struct {
	Name   string
	Kind   RelationshipKind
	Target string
	Caps   FieldCaps
}

// ResourceType describes one resource type: its public name, identity kind,
// and field descriptors. ClientIDs permits create operations to carry a
// client-chosen id instead of having the server assign one.
type ResourceType struct {
	Name          string
	IDKind        IDKind
	ClientIDs     bool
	Attributes    []Attribute
	Relationships []Relationship
}

// Attribute returns the named attribute descriptor, if declared.
func (t *ResourceType) Attribute(name string) (Attribute, bool) {
	for _, a := range t.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Relationship returns the named relationship descriptor, if declared.
func (t *ResourceType) Relationship(name string) (Relationship, bool) {
	for _, r := range t.Relationships {
		if r.Name == name {
			return r, true
		}
	}
	return Relationship{}, false
}

// Registry is the read-only set of resource types the server knows about.
type Registry struct {
	types map[string]*ResourceType
	names []string
}

// NewRegistry validates the given descriptors and builds a registry from
// them. Duplicate type names and relationships targeting undeclared types are
// rejected.
func NewRegistry(types ...*ResourceType) (*Registry, error) {
	reg := &Registry{types: make(map[string]*ResourceType, len(types))}
	for _, t := range types {
		if t.Name == "" {
			return nil, fmt.Errorf("resource type with empty name")
		}
		if _, ok := reg.types[t.Name]; ok {
			return nil, fmt.Errorf("duplicate resource type %q", t.Name)
		}
		reg.types[t.Name] = t
		reg.names = append(reg.names, t.Name)
	}
	for _, t := range types {
		for _, r := range t.Relationships {
			if _, ok := reg.types[r.Target]; !ok {
				return nil, fmt.Errorf("relationship %s.%s targets undeclared type %q", t.Name, r.Name, r.Target)
			}
		}
	}
	return reg, nil
}

// ResolveByName returns the descriptor for the named resource type.
func (r *Registry) ResolveByName(name string) (*ResourceType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Names returns the declared type names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
