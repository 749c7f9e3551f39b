package store

import (
	"fmt"
	"net/http"

	"github.com/mwhitworth/stagehand/internal/jsonapi"
	"github.com/mwhitworth/stagehand/internal/schema"
)

// Store failures that a client can provoke are returned as protocol errors,
// so a failing batch operation surfaces them with the right status and
// wording instead of an opaque execution failure.

func notFound(resourceType, id string) *jsonapi.Error {
	return &jsonapi.Error{
		Status: http.StatusNotFound,
		Title:  "The requested resource does not exist.",
		Detail: fmt.Sprintf("Resource of type '%s' with ID '%s' does not exist.", resourceType, id),
	}
}

func relatedNotFound(rel schema.Relationship, id string) *jsonapi.Error {
	return &jsonapi.Error{
		Status: http.StatusNotFound,
		Title:  "A related resource does not exist.",
		Detail: fmt.Sprintf("Related resource of type '%s' with ID '%s' in relationship '%s' does not exist.", rel.Target, id, rel.Name),
	}
}

func alreadyExists(resourceType, id string) *jsonapi.Error {
	return &jsonapi.Error{
		Status: http.StatusConflict,
		Title:  "Another resource with the specified ID already exists.",
		Detail: fmt.Sprintf("Another resource of type '%s' with ID '%s' already exists.", resourceType, id),
	}
}
