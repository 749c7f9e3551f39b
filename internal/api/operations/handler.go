// Package operations serves the atomic operations endpoint.
package operations

import (
	"io"
	"net/http"

	"github.com/mwhitworth/stagehand/internal/api"
	"github.com/mwhitworth/stagehand/internal/atomic"
	"github.com/mwhitworth/stagehand/internal/jsonapi"
)

// Handler handles atomic operations HTTP requests.
type Handler struct {
	engine *atomic.Engine
}

// Post handles POST /api/operations. The whole batch runs in one
// transaction; the first failing operation rolls everything back and the
// response is a single error document.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	if !api.Negotiate(w, r, jsonapi.EndpointOperations) {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteAtomicError(w, api.NewDeserializationError(err))
		return
	}

	doc, err := h.engine.Run(r.Context(), body)
	if err != nil {
		api.WriteAtomicError(w, err)
		return
	}
	if doc == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	api.WriteAtomicDocument(w, http.StatusOK, doc)
}
