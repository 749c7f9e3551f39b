package atomic

import (
	"fmt"
	"net/http"

	"github.com/mwhitworth/stagehand/internal/jsonapi"
)

// LocalIDTracker maps the local ids declared by create operations to the
// identities the store assigned them. Its scope is exactly one batch: the
// executor creates one per request and discards it afterward.
type LocalIDTracker struct {
	entries map[string]localIDEntry
}

type localIDEntry struct {
	resourceType string
	id           string
}

// NewLocalIDTracker returns an empty tracker.
func NewLocalIDTracker() *LocalIDTracker {
	return &LocalIDTracker{entries: make(map[string]localIDEntry)}
}

// Declare records the identity assigned to a local id. It is called only
// after the declaring create operation has executed. Redeclaring a local id
// within the same batch is an error.
func (t *LocalIDTracker) Declare(lid, resourceType, id string) error {
	if _, exists := t.entries[lid]; exists {
		return &jsonapi.Error{
			Status: http.StatusUnprocessableEntity,
			Title:  "Another local ID with the same name is already defined at this point.",
			Detail: fmt.Sprintf("Another local ID with name '%s' is already defined at this point.", lid),
		}
	}
	t.entries[lid] = localIDEntry{resourceType: resourceType, id: id}
	return nil
}

// Resolve returns the identity declared for lid. Resolution fails when the
// local id was never declared by an earlier operation, or when it was
// declared for a different resource type than expected.
func (t *LocalIDTracker) Resolve(lid, expectedType string) (string, error) {
	entry, ok := t.entries[lid]
	if !ok {
		return "", &jsonapi.Error{
			Status: http.StatusUnprocessableEntity,
			Title:  "Local ID cannot be used at this point.",
			Detail: fmt.Sprintf("Local ID '%s' is not defined at this point.", lid),
		}
	}
	if entry.resourceType != expectedType {
		return "", &jsonapi.Error{
			Status: http.StatusUnprocessableEntity,
			Title:  "Incompatible type in Local ID usage.",
			Detail: fmt.Sprintf("Local ID '%s' belongs to resource type '%s' instead of '%s'.", lid, entry.resourceType, expectedType),
		}
	}
	return entry.id, nil
}
