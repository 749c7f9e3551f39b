package resources

import (
	"encoding/json"
	"net/http"

	"github.com/mwhitworth/stagehand/internal/api"
	"github.com/mwhitworth/stagehand/internal/atomic"
	"github.com/mwhitworth/stagehand/internal/jsonapi"
)

// GetRelationship handles GET /api/{type}/{id}/relationships/{rel}.
func (h *Handler) GetRelationship(w http.ResponseWriter, r *http.Request) {
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
	rel, err := h.validator.ResolveRelationship(rt, r.PathValue("rel"))
	if err != nil {
		api.WriteError(w, err)
		return
	}

	var linkage atomic.Linkage
	err = h.inTransaction(r.Context(), func(tx atomic.Transaction) error {
		var err error
		linkage, err = rh.GetRelationship(r.Context(), tx, id, *rel)
		return err
	})
	if err != nil {
		api.WriteError(w, err)
		return
	}

	api.WriteDocument(w, http.StatusOK, &jsonapi.LinkageDocument{
		JSONAPI: jsonapi.BaseImplementation(),
		Data:    linkage.Data(),
	})
}

// AddToRelationship handles POST /api/{type}/{id}/relationships/{rel}.
func (h *Handler) AddToRelationship(w http.ResponseWriter, r *http.Request) {
	h.changeRelationship(w, r, atomic.OpAddToRelationship)
}

// SetRelationship handles PATCH /api/{type}/{id}/relationships/{rel}.
func (h *Handler) SetRelationship(w http.ResponseWriter, r *http.Request) {
	h.changeRelationship(w, r, atomic.OpSetRelationship)
}

// RemoveFromRelationship handles DELETE /api/{type}/{id}/relationships/{rel}.
func (h *Handler) RemoveFromRelationship(w http.ResponseWriter, r *http.Request) {
	h.changeRelationship(w, r, atomic.OpRemoveFromRelationship)
}

func (h *Handler) changeRelationship(w http.ResponseWriter, r *http.Request, kind atomic.OperationKind) {
	if !api.Negotiate(w, r, jsonapi.EndpointResource) {
		return
	}
	rt, rh, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var body jsonapi.RelationshipObject
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, api.NewDeserializationError(err))
		return
	}

	c, err := h.validator.ValidateRelationshipChange(kind, rt.Name, r.PathValue("id"), r.PathValue("rel"), &body)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	err = h.inTransaction(r.Context(), func(tx atomic.Transaction) error {
		switch kind {
		case atomic.OpAddToRelationship:
			return rh.AddToRelationship(r.Context(), tx, c.Subject.ID, *c.Relationship, c.Payload.Refs)
		case atomic.OpSetRelationship:
			return rh.SetRelationship(r.Context(), tx, c.Subject.ID, *c.Relationship, c.Payload.Refs)
		default:
			return rh.RemoveFromRelationship(r.Context(), tx, c.Subject.ID, *c.Relationship, c.Payload.Refs)
		}
	})
	if err != nil {
		api.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
