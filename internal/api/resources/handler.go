// Package resources serves the regular JSON:API endpoints for single
// resources. It reuses the validator and store handlers of the batch path,
// with one transaction per request.
package resources

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mwhitworth/stagehand/internal/api"
	"github.com/mwhitworth/stagehand/internal/atomic"
	"github.com/mwhitworth/stagehand/internal/jsonapi"
	"github.com/mwhitworth/stagehand/internal/schema"
	"github.com/mwhitworth/stagehand/internal/store"
)

// Handler handles single-resource HTTP requests.
type Handler struct {
	registry  *schema.Registry
	validator *atomic.Validator
	db        *store.DB
	handlers  map[string]*store.ResourceHandler
}

// Get handles GET /api/{type}/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if !api.Negotiate(w, r, jsonapi.EndpointResource) {
		return
	}
	rt, rh, ok := h.resolve(w, r)
	if !ok {
		return
	}
	id, err := h.validator.ParseID(rt, r.PathValue("id"))
	if err != nil {
		api.WriteError(w, err)
		return
	}

	var res *atomic.Resource
	err = h.inTransaction(r.Context(), func(tx atomic.Transaction) error {
		var err error
		res, err = rh.GetResource(r.Context(), tx, id)
		return err
	})
	if err != nil {
		api.WriteError(w, err)
		return
	}

	api.WriteDocument(w, http.StatusOK, &jsonapi.ResourceDocument{
		JSONAPI: jsonapi.BaseImplementation(),
		Data:    res.Object(),
	})
}

// Create handles POST /api/{type}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !api.Negotiate(w, r, jsonapi.EndpointResource) {
		return
	}
	rt, rh, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, api.NewDeserializationError(err))
		return
	}

	c, err := h.validator.ValidateResourceCreate(rt.Name, body.Data)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	var created *atomic.Resource
	err = h.inTransaction(r.Context(), func(tx atomic.Transaction) error {
		var err error
		created, err = rh.CreateResource(r.Context(), tx, c.Subject, c.Fields)
		return err
	})
	if err != nil {
		api.WriteError(w, err)
		return
	}

	w.Header().Set("Location", "/api/"+rt.Name+"/"+created.ID)
	api.WriteDocument(w, http.StatusCreated, &jsonapi.ResourceDocument{
		JSONAPI: jsonapi.BaseImplementation(),
		Data:    created.Object(),
	})
}

// Update handles PATCH /api/{type}/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if !api.Negotiate(w, r, jsonapi.EndpointResource) {
		return
	}
	rt, rh, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, api.NewDeserializationError(err))
		return
	}

	c, err := h.validator.ValidateResourceUpdate(rt.Name, r.PathValue("id"), body.Data)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	var updated *atomic.Resource
	err = h.inTransaction(r.Context(), func(tx atomic.Transaction) error {
		var err error
		updated, err = rh.UpdateResource(r.Context(), tx, c.Subject, c.Fields)
		return err
	})
	if err != nil {
		api.WriteError(w, err)
		return
	}

	api.WriteDocument(w, http.StatusOK, &jsonapi.ResourceDocument{
		JSONAPI: jsonapi.BaseImplementation(),
		Data:    updated.Object(),
	})
}

// Delete handles DELETE /api/{type}/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !api.Negotiate(w, r, jsonapi.EndpointResource) {
		return
	}
	rt, rh, ok := h.resolve(w, r)
	if !ok {
		return
	}
	id, err := h.validator.ParseID(rt, r.PathValue("id"))
	if err != nil {
		api.WriteError(w, err)
		return
	}

	err = h.inTransaction(r.Context(), func(tx atomic.Transaction) error {
		return rh.DeleteResource(r.Context(), tx, id)
	})
	if err != nil {
		api.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// resolve maps the {type} path segment onto a registered resource type and
// its store handler. An unknown type in the URL is an endpoint error, not a
// body error.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (*schema.ResourceType, *store.ResourceHandler, bool) {
	name := r.PathValue("type")
	rt, ok := h.registry.ResolveByName(name)
	if !ok {
		api.WriteError(w, api.NewEndpointNotFoundError(r.URL.Path))
		return nil, nil, false
	}
	rh, ok := h.handlers[name]
	if !ok {
		api.WriteError(w, api.NewEndpointNotFoundError(r.URL.Path))
		return nil, nil, false
	}
	return rt, rh, true
}

// inTransaction runs fn inside a fresh transaction, committing on success and
// rolling back on any failure.
func (h *Handler) inTransaction(ctx context.Context, fn func(tx atomic.Transaction) error) error {
	tx, err := h.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
