package atomic

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mwhitworth/stagehand/internal/jsonapi"
	"github.com/mwhitworth/stagehand/internal/schema"
)

// Transaction is the persistence transaction boundary a batch runs inside.
type Transaction interface {
	Commit() error
	Rollback() error
}

// TransactionFactory opens the transaction a batch executes in.
type TransactionFactory interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Creator handles create-resource operations for one resource type.
type Creator interface {
	CreateResource(ctx context.Context, tx Transaction, res *Resource, fields TargetedFields) (*Resource, error)
}

// Updater handles update-resource operations for one resource type.
type Updater interface {
	UpdateResource(ctx context.Context, tx Transaction, res *Resource, fields TargetedFields) (*Resource, error)
}

// Deleter handles delete-resource operations for one resource type.
type Deleter interface {
	DeleteResource(ctx context.Context, tx Transaction, id string) error
}

// RelationshipAdder appends references to a to-many relationship.
type RelationshipAdder interface {
	AddToRelationship(ctx context.Context, tx Transaction, id string, rel schema.Relationship, refs []Reference) error
}

// RelationshipSetter replaces a relationship's linkage outright.
type RelationshipSetter interface {
	SetRelationship(ctx context.Context, tx Transaction, id string, rel schema.Relationship, refs []Reference) error
}

// RelationshipRemover removes references from a to-many relationship.
type RelationshipRemover interface {
	RemoveFromRelationship(ctx context.Context, tx Transaction, id string, rel schema.Relationship, refs []Reference) error
}

type capabilityKey struct {
	kind         OperationKind
	resourceType string
}

// Capabilities maps (operation kind, resource type) to the handler that
// executes it. It is populated at startup by scanning each registered
// handler for the capability interfaces it implements, and is read-only
// afterward.
type Capabilities struct {
	handlers map[capabilityKey]any
	types    map[string]bool
}

// NewCapabilities returns an empty capability registry.
func NewCapabilities() *Capabilities {
	return &Capabilities{
		handlers: make(map[capabilityKey]any),
		types:    make(map[string]bool),
	}
}

// Register scans handler for capability interfaces and records each one it
// implements under the given resource type.
func (c *Capabilities) Register(resourceType string, handler any) {
	c.types[resourceType] = true
	if h, ok := handler.(Creator); ok {
		c.handlers[capabilityKey{OpCreateResource, resourceType}] = h
	}
	if h, ok := handler.(Updater); ok {
		c.handlers[capabilityKey{OpUpdateResource, resourceType}] = h
	}
	if h, ok := handler.(Deleter); ok {
		c.handlers[capabilityKey{OpDeleteResource, resourceType}] = h
	}
	if h, ok := handler.(RelationshipAdder); ok {
		c.handlers[capabilityKey{OpAddToRelationship, resourceType}] = h
	}
	if h, ok := handler.(RelationshipSetter); ok {
		c.handlers[capabilityKey{OpSetRelationship, resourceType}] = h
	}
	if h, ok := handler.(RelationshipRemover); ok {
		c.handlers[capabilityKey{OpRemoveFromRelationship, resourceType}] = h
	}
}

// Resolve returns the handler capability for the given kind and resource
// type. Resolution fails when no handler is registered for the type at all,
// or when the registered handler does not implement the needed capability.
func (c *Capabilities) Resolve(kind OperationKind, resourceType string) (any, error) {
	if !c.types[resourceType] {
		return nil, &jsonapi.Error{
			Status: http.StatusNotFound,
			Title:  "Request body includes unknown resource type.",
			Detail: fmt.Sprintf("Resource type '%s' does not exist.", resourceType),
		}
	}
	h, ok := c.handlers[capabilityKey{kind, resourceType}]
	if !ok {
		return nil, &jsonapi.Error{
			Status: http.StatusBadRequest,
			Title:  "The requested operation is not supported.",
			Detail: fmt.Sprintf("Resource type '%s' does not support %s operations.", resourceType, kind),
		}
	}
	return h, nil
}

// Bind resolves the capability of every container in the batch, attaching it
// for the executor. Binding fails on the first unresolvable operation,
// pointing at its entry.
func (c *Capabilities) Bind(containers []*OperationContainer) error {
	for _, op := range containers {
		handler, err := c.Resolve(op.Kind, op.Type.Name)
		if err != nil {
			return withEntryPointer(err, op.Index)
		}
		op.capability = handler
	}
	return nil
}

// withEntryPointer attaches the i-th entry's pointer to a protocol error
// that does not already carry a more specific one.
func withEntryPointer(err error, index int) error {
	if protoErr, ok := err.(*jsonapi.Error); ok && protoErr.Pointer == "" {
		protoErr.Pointer = entryPointer(index)
	}
	return err
}
