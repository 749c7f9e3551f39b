package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mwhitworth/stagehand/internal/jsonapi"
)

// WriteDocument marshals a JSON:API document and writes it with the plain
// media type.
func WriteDocument(w http.ResponseWriter, status int, doc any) {
	writeDocument(w, jsonapi.MediaType, status, doc)
}

// WriteAtomicDocument marshals a document and writes it with the atomic
// extension media type, as responses from the operations endpoint carry.
func WriteAtomicDocument(w http.ResponseWriter, status int, doc any) {
	writeDocument(w, jsonapi.AtomicMediaType, status, doc)
}

// WriteError converts err into an error document and writes it with the
// plain media type.
func WriteError(w http.ResponseWriter, err error) {
	status, doc := jsonapi.NewErrorDocument(err, http.StatusInternalServerError)
	writeDocument(w, jsonapi.MediaType, status, doc)
}

// WriteAtomicError converts err into an error document for the operations
// endpoint.
func WriteAtomicError(w http.ResponseWriter, err error) {
	status, doc := jsonapi.NewErrorDocument(err, http.StatusInternalServerError)
	writeDocument(w, jsonapi.AtomicMediaType, status, doc)
}

func writeDocument(w http.ResponseWriter, contentType string, status int, doc any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("failed to write response document", "error", err)
	}
}

// NewEndpointNotFoundError is the error for URLs that name no known
// endpoint, including unknown resource types in the path.
func NewEndpointNotFoundError(path string) *jsonapi.Error {
	return &jsonapi.Error{
		Status: http.StatusNotFound,
		Title:  "The requested endpoint does not exist.",
		Detail: fmt.Sprintf("The endpoint '%s' does not exist.", path),
	}
}

// NewDeserializationError wraps a JSON decode failure of a request body.
func NewDeserializationError(err error) *jsonapi.Error {
	return &jsonapi.Error{
		Status: http.StatusBadRequest,
		Title:  "Failed to deserialize request body.",
		Detail: err.Error(),
	}
}
