package conformance_test

import (
	"net/http"
	"testing"
)

func TestResetEndpoint(t *testing.T) {
	resetServer(t)

	// Create a performer so we have data to clear.
	id := createResource(t, "performers", map[string]any{"artistName": "Thelonious Monk"})

	resp := doRequest(t, http.MethodGet, "/api/performers/"+id, nil)
	mustStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()

	// Call reset.
	resp = doRequest(t, http.MethodPost, "/_stagehand/reset", nil)
	mustStatus(t, resp, http.StatusOK)
	body := readJSON(t, resp)
	assertStringField(t, body, "status", "ok")

	// Verify the performer is gone after reset.
	resp = doRequest(t, http.MethodGet, "/api/performers/"+id, nil)
	mustStatus(t, resp, http.StatusNotFound)
	_ = resp.Body.Close()

	// Identity counters restart along with the data.
	if newID := createResource(t, "performers", map[string]any{"artistName": "Bill Evans"}); newID != "1" {
		t.Errorf("expected ID 1 after reset, got %q", newID)
	}
}

func TestSeedEndpoint(t *testing.T) {
	resetServer(t)

	resp := doRequest(t, http.MethodPost, "/_stagehand/seed", nil)
	mustStatus(t, resp, http.StatusOK)
	body := readJSON(t, resp)
	assertStringField(t, body, "status", "ok")

	// The demo catalog is loaded.
	resp = doRequest(t, http.MethodGet, "/api/companies/1", nil)
	mustStatus(t, resp, http.StatusOK)
	data := assertIsObject(t, readJSON(t, resp), "data")
	attrs := assertIsObject(t, data, "attributes")
	assertStringField(t, attrs, "name", "Blue Note Records")

	// Seeding is idempotent; a second call leaves the catalog as it is.
	resp = doRequest(t, http.MethodPost, "/_stagehand/seed", nil)
	mustStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()

	resp = doRequest(t, http.MethodGet, "/api/companies/3", nil)
	mustStatus(t, resp, http.StatusNotFound)
	_ = resp.Body.Close()
}

func TestHealthEndpoint(t *testing.T) {
	resp := doRequest(t, http.MethodGet, "/_stagehand/health", nil)
	mustStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}
	body := readJSON(t, resp)
	assertStringField(t, body, "status", "ok")
}

// TestAdminEndpointsBypassAuth verifies the operational endpoints work
// without a bearer token even though the API requires one.
func TestAdminEndpointsBypassAuth(t *testing.T) {
	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/_stagehand/health"},
		{http.MethodPost, "/_stagehand/reset"},
	} {
		req, err := http.NewRequest(tt.method, serverURL+tt.path, nil)
		if err != nil {
			t.Fatalf("create request: %v", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s %s without token: status = %d, want %d", tt.method, tt.path, resp.StatusCode, http.StatusOK)
		}
		_ = resp.Body.Close()
	}
}
