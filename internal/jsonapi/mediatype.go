package jsonapi

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// MediaType is the JSON:API base media type.
const MediaType = "application/vnd.api+json"

// ExtAtomicOperations is the URI of the atomic operations extension.
const ExtAtomicOperations = "https://jsonapi.org/ext/atomic"

// AtomicMediaType is the media type value required in the Content-Type header
// of requests to the operations endpoint.
const AtomicMediaType = MediaType + `; ext="` + ExtAtomicOperations + `"`

// Endpoint distinguishes media type negotiation rules between regular
// resource endpoints and the atomic operations endpoint.
type Endpoint int

const (
	// EndpointResource is any regular JSON:API endpoint.
	EndpointResource Endpoint = iota
	// EndpointOperations is the atomic operations endpoint, which requires
	// the atomic extension in Content-Type and permits it in Accept.
	EndpointOperations
)

func (e Endpoint) requiredContentType() string {
	if e == EndpointOperations {
		return AtomicMediaType
	}
	return MediaType
}

// NegotiateAccept checks the Accept header values against the endpoint's
// media type rules. An empty or absent Accept header is always allowed.
// Quality-value parameters never influence the decision.
func NegotiateAccept(endpoint Endpoint, headerValues []string) error {
	entries := splitAcceptValues(headerValues)
	if len(entries) == 0 {
		return nil
	}

	for _, entry := range entries {
		base, params, err := mime.ParseMediaType(entry)
		if err != nil {
			continue
		}
		if base == "*/*" || base == "application/*" {
			return nil
		}
		if base != MediaType {
			continue
		}
		if endpoint == EndpointResource {
			// Parameters such as profile, unrecognized ext values, and
			// unknown names are ignored at regular endpoints.
			return nil
		}
		ext, ok := params["ext"]
		if !ok || extContains(ext, ExtAtomicOperations) {
			return nil
		}
	}

	return &Error{
		Status: http.StatusNotAcceptable,
		Title:  "The specified Accept header value does not contain any supported media types.",
		Detail: fmt.Sprintf("Please include '%s' in the Accept header values.", endpoint.requiredContentType()),
		Header: "Accept",
	}
}

// NegotiateContentType checks the Content-Type header value against the
// endpoint's required media type. The operations endpoint requires the
// atomic extension parameter; regular endpoints reject any parameters.
func NegotiateContentType(endpoint Endpoint, value string) error {
	base, params, err := mime.ParseMediaType(value)
	if err == nil && base == MediaType {
		switch endpoint {
		case EndpointOperations:
			if ext, ok := params["ext"]; ok && extContains(ext, ExtAtomicOperations) && len(params) == 1 {
				return nil
			}
		case EndpointResource:
			if len(params) == 0 {
				return nil
			}
		}
	}

	return &Error{
		Status: http.StatusUnsupportedMediaType,
		Title:  "The specified Content-Type header value is not supported.",
		Detail: fmt.Sprintf("Please specify '%s' instead of '%s' for the Content-Type header value.", endpoint.requiredContentType(), value),
		Header: "Content-Type",
	}
}

// splitAcceptValues flattens Accept header lines into individual media range
// entries, dropping empty segments.
func splitAcceptValues(headerValues []string) []string {
	var entries []string
	for _, value := range headerValues {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				entries = append(entries, part)
			}
		}
	}
	return entries
}

// extContains reports whether a space-separated ext parameter value includes
// the given extension URI.
func extContains(ext, uri string) bool {
	for _, candidate := range strings.Fields(ext) {
		if candidate == uri {
			return true
		}
	}
	return false
}
