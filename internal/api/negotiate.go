package api

import (
	"net/http"

	"github.com/mwhitworth/stagehand/internal/jsonapi"
)

// Negotiate enforces the endpoint's media type rules, writing the error
// document itself when they are not met. The Content-Type header is only
// checked on requests that carry a body.
func Negotiate(w http.ResponseWriter, r *http.Request, endpoint jsonapi.Endpoint) bool {
	if err := jsonapi.NegotiateAccept(endpoint, r.Header.Values("Accept")); err != nil {
		writeNegotiated(w, endpoint, err)
		return false
	}
	if r.ContentLength != 0 {
		if err := jsonapi.NegotiateContentType(endpoint, r.Header.Get("Content-Type")); err != nil {
			writeNegotiated(w, endpoint, err)
			return false
		}
	}
	return true
}

func writeNegotiated(w http.ResponseWriter, endpoint jsonapi.Endpoint, err error) {
	if endpoint == jsonapi.EndpointOperations {
		WriteAtomicError(w, err)
		return
	}
	WriteError(w, err)
}
