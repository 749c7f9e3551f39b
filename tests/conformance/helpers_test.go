package conformance_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

const (
	mediaType       = "application/vnd.api+json"
	atomicMediaType = `application/vnd.api+json; ext="https://jsonapi.org/ext/atomic"`
)

// IDs of the two tracks in the demo catalog loaded by /_stagehand/seed.
const (
	seededTrackBlueTrain = "5fe17c57-b1b6-4c8e-a711-09dcc7a447a4"
	seededTrackSpiral    = "9b83a0b9-1f4b-4c0a-8d5c-3f62e1c0aa27"
)

// doRequest makes a JSON:API request to the test server and returns the
// response. The caller is responsible for closing the response body.
func doRequest(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, serverURL+path, bodyReader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Accept", mediaType)
	if body != nil {
		req.Header.Set("Content-Type", mediaType)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// doOperations posts a batch to the operations endpoint with the atomic
// extension media type in both the Content-Type and Accept headers.
func doOperations(t *testing.T, operations []any) *http.Response {
	t.Helper()

	b, err := json.Marshal(map[string]any{"atomic:operations": operations})
	if err != nil {
		t.Fatalf("marshal operations: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/operations", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", atomicMediaType)
	req.Header.Set("Accept", atomicMediaType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/operations: %v", err)
	}
	return resp
}

// rawRequest makes a request with full control over the body and headers.
// Authorization is set first, so a headers entry can override it.
func rawRequest(t *testing.T, method, path, body string, headers map[string]string) *http.Response {
	t.Helper()

	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, serverURL+path, bodyReader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer test-token")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// readJSON reads the response body and unmarshals it into a map.
func readJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(b, &result); err != nil {
		t.Fatalf("unmarshal response (status %d): body=%s err=%v", resp.StatusCode, string(b), err)
	}
	return result
}

// readBody reads and returns the raw response body.
func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return b
}

// mustStatus asserts the HTTP response has the expected status code.
func mustStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d; body=%s", expected, resp.StatusCode, string(b))
	}
}

// resetServer calls POST /_stagehand/reset to wipe all data. Identity
// counters start over, so the next create on an integer-ID type gets ID 1.
func resetServer(t *testing.T) {
	t.Helper()
	resp := doRequest(t, http.MethodPost, "/_stagehand/reset", nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("reset server failed: status=%d body=%s", resp.StatusCode, string(b))
	}
}

// seedServer calls POST /_stagehand/seed to load the demo catalog.
func seedServer(t *testing.T) {
	t.Helper()
	resp := doRequest(t, http.MethodPost, "/_stagehand/seed", nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("seed server failed: status=%d body=%s", resp.StatusCode, string(b))
	}
}

// createResource creates a resource through the single-resource endpoint and
// returns its ID.
func createResource(t *testing.T, resourceType string, attributes map[string]any) string {
	t.Helper()
	body := map[string]any{
		"data": map[string]any{
			"type":       resourceType,
			"attributes": attributes,
		},
	}
	resp := doRequest(t, http.MethodPost, "/api/"+resourceType, body)
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		t.Fatalf("create %s: status=%d body=%s", resourceType, resp.StatusCode, string(b))
	}
	data := assertIsObject(t, readJSON(t, resp), "data")
	return assertIsString(t, data, "id")
}

// linkageData fetches a relationship endpoint and returns the raw data member.
func linkageData(t *testing.T, path string) any {
	t.Helper()
	resp := doRequest(t, http.MethodGet, path, nil)
	mustStatus(t, resp, http.StatusOK)
	body := readJSON(t, resp)
	v, ok := body["data"]
	if !ok {
		t.Fatalf("expected 'data' member in linkage document, got keys: %v", mapKeys(body))
	}
	return v
}

// assertErrorDocument validates the response body is a JSON:API error
// document: an errors array whose members each carry a generated id, a status,
// and a title. It returns the first error object. An empty expectedTitle
// skips the title check.
func assertErrorDocument(t *testing.T, body map[string]any, expectedTitle string) map[string]any {
	t.Helper()
	errs := assertIsArray(t, body, "errors")
	if len(errs) == 0 {
		t.Fatalf("expected at least one error object, got none")
	}
	for i, e := range errs {
		obj := toObject(t, e)
		if id := assertIsString(t, obj, "id"); len(id) != 36 {
			t.Errorf("errors[%d].id: expected a 36-character UUID, got %q", i, id)
		}
		assertFieldPresent(t, obj, "status")
		assertFieldPresent(t, obj, "title")
	}
	first := toObject(t, errs[0])
	if expectedTitle != "" {
		assertStringField(t, first, "title", expectedTitle)
	}
	return first
}

// errorSource returns the source object of an error.
func errorSource(t *testing.T, errObj map[string]any) map[string]any {
	t.Helper()
	return assertIsObject(t, errObj, "source")
}

// assertFieldPresent checks that a key exists in the map.
func assertFieldPresent(t *testing.T, m map[string]any, key string) {
	t.Helper()
	if _, ok := m[key]; !ok {
		t.Errorf("expected field %q to be present, got keys: %v", key, mapKeys(m))
	}
}

// assertStringField checks that a key exists and has the expected string value.
func assertStringField(t *testing.T, m map[string]any, key, expected string) {
	t.Helper()
	v, ok := m[key]
	if !ok {
		t.Errorf("expected field %q to be present", key)
		return
	}
	s, ok := v.(string)
	if !ok {
		t.Errorf("expected field %q to be string, got %T", key, v)
		return
	}
	if s != expected {
		t.Errorf("field %q: expected %q, got %q", key, expected, s)
	}
}

// assertIsString checks that a field is a string and returns its value.
func assertIsString(t *testing.T, m map[string]any, key string) string {
	t.Helper()
	v, ok := m[key]
	if !ok {
		t.Errorf("expected field %q to be present", key)
		return ""
	}
	s, ok := v.(string)
	if !ok {
		t.Errorf("expected field %q to be string, got %T", key, v)
		return ""
	}
	return s
}

// assertIsArray checks that a field is a JSON array and returns it.
func assertIsArray(t *testing.T, m map[string]any, key string) []any {
	t.Helper()
	v, ok := m[key]
	if !ok {
		t.Errorf("expected field %q to be present, got keys: %v", key, mapKeys(m))
		return nil
	}
	a, ok := v.([]any)
	if !ok {
		t.Errorf("expected field %q to be array, got %T", key, v)
		return nil
	}
	return a
}

// assertIsObject checks that a field is a JSON object and returns it.
func assertIsObject(t *testing.T, m map[string]any, key string) map[string]any {
	t.Helper()
	v, ok := m[key]
	if !ok {
		t.Errorf("expected field %q to be present, got keys: %v", key, mapKeys(m))
		return nil
	}
	o, ok := v.(map[string]any)
	if !ok {
		t.Errorf("expected field %q to be object, got %T", key, v)
		return nil
	}
	return o
}

// assertIdentifier checks that a value is a resource identifier with the
// expected type and id.
func assertIdentifier(t *testing.T, v any, resourceType, id string) {
	t.Helper()
	obj := toObject(t, v)
	assertStringField(t, obj, "type", resourceType)
	assertStringField(t, obj, "id", id)
}

// assertImplementation checks the jsonapi member of a document.
func assertImplementation(t *testing.T, body map[string]any, wantAtomicExt bool) {
	t.Helper()
	impl := assertIsObject(t, body, "jsonapi")
	if impl == nil {
		return
	}
	assertStringField(t, impl, "version", "1.1")
	if !wantAtomicExt {
		return
	}
	ext := assertIsArray(t, impl, "ext")
	found := false
	for _, e := range ext {
		if e == "https://jsonapi.org/ext/atomic" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected jsonapi.ext to list the atomic extension, got %v", ext)
	}
}

// toObject converts a slice element to a map.
func toObject(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	return m
}

// mapKeys returns the keys of a map for diagnostic output.
func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
