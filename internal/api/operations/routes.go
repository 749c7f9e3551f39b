package operations

import (
	"net/http"

	"github.com/mwhitworth/stagehand/internal/atomic"
)

// RegisterRoutes adds the atomic operations endpoint to the given mux.
func RegisterRoutes(mux *http.ServeMux, engine *atomic.Engine) {
	h := &Handler{engine: engine}

	mux.HandleFunc("POST /api/operations", h.Post)
}
