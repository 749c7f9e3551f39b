package resources

import (
	"net/http"

	"github.com/mwhitworth/stagehand/internal/atomic"
	"github.com/mwhitworth/stagehand/internal/schema"
	"github.com/mwhitworth/stagehand/internal/store"
)

// RegisterRoutes adds the resource and relationship endpoints for every
// registered resource type to the given mux.
func RegisterRoutes(mux *http.ServeMux, reg *schema.Registry, db *store.DB) {
	handlers := make(map[string]*store.ResourceHandler, len(reg.Names()))
	for _, name := range reg.Names() {
		if rt, ok := reg.ResolveByName(name); ok {
			handlers[name] = store.NewResourceHandler(rt)
		}
	}

	h := &Handler{
		registry:  reg,
		validator: atomic.NewValidator(reg),
		db:        db,
		handlers:  handlers,
	}

	mux.HandleFunc("GET /api/{type}/{id}", h.Get)
	mux.HandleFunc("POST /api/{type}", h.Create)
	mux.HandleFunc("PATCH /api/{type}/{id}", h.Update)
	mux.HandleFunc("DELETE /api/{type}/{id}", h.Delete)
	mux.HandleFunc("GET /api/{type}/{id}/relationships/{rel}", h.GetRelationship)
	mux.HandleFunc("POST /api/{type}/{id}/relationships/{rel}", h.AddToRelationship)
	mux.HandleFunc("PATCH /api/{type}/{id}/relationships/{rel}", h.SetRelationship)
	mux.HandleFunc("DELETE /api/{type}/{id}/relationships/{rel}", h.RemoveFromRelationship)
}
