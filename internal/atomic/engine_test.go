package atomic_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/mwhitworth/stagehand/internal/atomic"
	"github.com/mwhitworth/stagehand/internal/schema"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit() error   { t.committed = true; return nil }
func (t *fakeTx) Rollback() error { t.rolledBack = true; return nil }

type fakeFactory struct {
	tx *fakeTx
}

func (f *fakeFactory) Begin(_ context.Context) (atomic.Transaction, error) {
	f.tx = &fakeTx{}
	return f.tx, nil
}

// fakeBackend records executed operations in order and can be told to fail
// at the n-th call, standing in for the persistence collaborator.
type fakeBackend struct {
	log    []string
	nextID int
	failAt int // 1-based call number to fail on, 0 = never
}

func (b *fakeBackend) step(entry string) error {
	b.log = append(b.log, entry)
	if b.failAt > 0 && len(b.log) == b.failAt {
		return errors.New("storage refused the operation")
	}
	return nil
}

type fakeHandler struct {
	typeName string
	backend  *fakeBackend
}

func (h *fakeHandler) CreateResource(_ context.Context, _ atomic.Transaction, res *atomic.Resource, _ atomic.TargetedFields) (*atomic.Resource, error) {
	h.backend.nextID++
	id := strconv.Itoa(h.backend.nextID)
	if res.ID != "" {
		id = res.ID
	}
	if err := h.backend.step("create " + res.Type + "/" + id); err != nil {
		return nil, err
	}
	return &atomic.Resource{Type: res.Type, ID: id, Attributes: res.Attributes}, nil
}

func (h *fakeHandler) UpdateResource(_ context.Context, _ atomic.Transaction, res *atomic.Resource, _ atomic.TargetedFields) (*atomic.Resource, error) {
	if err := h.backend.step("update " + res.Type + "/" + res.ID); err != nil {
		return nil, err
	}
	return &atomic.Resource{Type: res.Type, ID: res.ID, Attributes: res.Attributes}, nil
}

func (h *fakeHandler) DeleteResource(_ context.Context, _ atomic.Transaction, id string) error {
	return h.backend.step("delete " + h.typeName + "/" + id)
}

func (h *fakeHandler) AddToRelationship(_ context.Context, _ atomic.Transaction, id string, rel schema.Relationship, refs []atomic.Reference) error {
	return h.backend.step(fmt.Sprintf("addrel %s/%s %s %s", h.typeName, id, rel.Name, refIDs(refs)))
}

func (h *fakeHandler) SetRelationship(_ context.Context, _ atomic.Transaction, id string, rel schema.Relationship, refs []atomic.Reference) error {
	return h.backend.step(fmt.Sprintf("setrel %s/%s %s %s", h.typeName, id, rel.Name, refIDs(refs)))
}

func (h *fakeHandler) RemoveFromRelationship(_ context.Context, _ atomic.Transaction, id string, rel schema.Relationship, refs []atomic.Reference) error {
	return h.backend.step(fmt.Sprintf("remrel %s/%s %s %s", h.typeName, id, rel.Name, refIDs(refs)))
}

func refIDs(refs []atomic.Reference) string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return strings.Join(ids, ",")
}

func testEngine(t *testing.T, failAt int) (*atomic.Engine, *fakeFactory, *fakeBackend) {
	t.Helper()
	reg := testRegistry(t)
	backend := &fakeBackend{failAt: failAt}
	caps := atomic.NewCapabilities()
	for _, name := range reg.Names() {
		caps.Register(name, &fakeHandler{typeName: name, backend: backend})
	}
	factory := &fakeFactory{}
	return atomic.NewEngine(reg, caps, factory), factory, backend
}

func TestEngine_LocalIDRoundTrip(t *testing.T) {
	engine, factory, backend := testEngine(t, 0)

	doc, err := engine.Run(context.Background(), []byte(`{"atomic:operations":[
		{"op":"add","data":{"type":"performers","lid":"p-1","attributes":{"artistName":"Ella"}}},
		{"op":"update","ref":{"type":"performers","lid":"p-1"},
		 "data":{"type":"performers","lid":"p-1","attributes":{"artistName":"Ella Fitzgerald"}}}
	]}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if doc == nil {
		t.Fatal("expected a results document")
	}
	if len(doc.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(doc.Results))
	}
	if doc.Results[0].Data.ID != "1" || doc.Results[1].Data.ID != "1" {
		t.Errorf("results target ids %q and %q, want both 1",
			doc.Results[0].Data.ID, doc.Results[1].Data.ID)
	}
	wantLog := []string{"create performers/1", "update performers/1"}
	if len(backend.log) != 2 || backend.log[0] != wantLog[0] || backend.log[1] != wantLog[1] {
		t.Errorf("log = %v, want %v", backend.log, wantLog)
	}
	if !factory.tx.committed {
		t.Error("transaction not committed")
	}
}

func TestEngine_ForwardReferenceFails(t *testing.T) {
	engine, factory, _ := testEngine(t, 0)

	doc, err := engine.Run(context.Background(), []byte(`{"atomic:operations":[
		{"op":"update","ref":{"type":"performers","lid":"t9"},
		 "data":{"type":"performers","lid":"t9","attributes":{"artistName":"X"}}}
	]}`))
	if doc != nil {
		t.Fatal("expected no results document")
	}
	pe := protoError(t, err)
	if !strings.Contains(pe.Detail, "Local ID 't9' is not defined at this point.") {
		t.Errorf("detail = %q", pe.Detail)
	}
	if pe.Pointer != "/atomic:operations[0]" {
		t.Errorf("pointer = %q", pe.Pointer)
	}
	if !factory.tx.rolledBack || factory.tx.committed {
		t.Errorf("tx = %+v, want rolled back", factory.tx)
	}
}

func TestEngine_FirstFailureAbortsAndRollsBack(t *testing.T) {
	engine, factory, backend := testEngine(t, 2)

	_, err := engine.Run(context.Background(), []byte(`{"atomic:operations":[
		{"op":"add","data":{"type":"performers","attributes":{"artistName":"One"}}},
		{"op":"add","data":{"type":"performers","attributes":{"artistName":"Two"}}},
		{"op":"add","data":{"type":"performers","attributes":{"artistName":"Three"}}}
	]}`))
	pe := protoError(t, err)
	if pe.Pointer != "/atomic:operations[1]" {
		t.Errorf("pointer = %q, want the failing operation", pe.Pointer)
	}
	if pe.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", pe.Status)
	}
	if !strings.Contains(pe.Detail, "storage refused the operation") {
		t.Errorf("detail = %q", pe.Detail)
	}
	if len(backend.log) != 2 {
		t.Errorf("log = %v, remaining operations should not have run", backend.log)
	}
	if !factory.tx.rolledBack || factory.tx.committed {
		t.Errorf("tx = %+v, want rolled back", factory.tx)
	}
}

func TestEngine_AllNullResultsMeansNoContent(t *testing.T) {
	engine, factory, backend := testEngine(t, 0)

	doc, err := engine.Run(context.Background(), []byte(`{"atomic:operations":[
		{"op":"remove","ref":{"type":"performers","id":"5"}},
		{"op":"remove","ref":{"type":"performers","id":"6"}}
	]}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if doc != nil {
		t.Fatalf("doc = %+v, want nil for an all-null batch", doc)
	}
	if len(backend.log) != 2 {
		t.Errorf("log = %v", backend.log)
	}
	if !factory.tx.committed {
		t.Error("transaction not committed")
	}
}

func TestEngine_MixedResultsKeepPositions(t *testing.T) {
	engine, _, _ := testEngine(t, 0)

	doc, err := engine.Run(context.Background(), []byte(`{"atomic:operations":[
		{"op":"remove","ref":{"type":"performers","id":"5"}},
		{"op":"add","data":{"type":"performers","attributes":{"artistName":"New"}}}
	]}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if doc == nil {
		t.Fatal("expected a results document")
	}
	if len(doc.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(doc.Results))
	}
	if doc.Results[0] != nil {
		t.Error("remove should contribute a null entry")
	}
	if doc.Results[1] == nil || doc.Results[1].Data.Attributes["artistName"] != "New" {
		t.Errorf("create result = %+v", doc.Results[1])
	}
	if doc.JSONAPI == nil || len(doc.JSONAPI.Ext) != 1 {
		t.Errorf("jsonapi member = %+v", doc.JSONAPI)
	}
}

func TestEngine_RelationshipPayloadResolvesLocalIDs(t *testing.T) {
	engine, _, backend := testEngine(t, 0)

	_, err := engine.Run(context.Background(), []byte(`{"atomic:operations":[
		{"op":"add","data":{"type":"tracks","lid":"t-1","attributes":{"title":"Song"}}},
		{"op":"add","ref":{"type":"companies","id":"9","relationship":"tracks"},
		 "data":[{"type":"tracks","lid":"t-1"}]}
	]}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(backend.log) != 2 {
		t.Fatalf("log = %v", backend.log)
	}
	if backend.log[1] != "addrel companies/9 tracks 1" {
		t.Errorf("log[1] = %q", backend.log[1])
	}
}

func TestEngine_RedeclaredLocalIDAborts(t *testing.T) {
	engine, factory, _ := testEngine(t, 0)

	_, err := engine.Run(context.Background(), []byte(`{"atomic:operations":[
		{"op":"add","data":{"type":"performers","lid":"x","attributes":{"artistName":"A"}}},
		{"op":"add","data":{"type":"performers","lid":"x","attributes":{"artistName":"B"}}}
	]}`))
	pe := protoError(t, err)
	if pe.Pointer != "/atomic:operations[1]" {
		t.Errorf("pointer = %q", pe.Pointer)
	}
	if !strings.Contains(pe.Title, "already defined at this point") {
		t.Errorf("title = %q", pe.Title)
	}
	if !factory.tx.rolledBack {
		t.Error("transaction not rolled back")
	}
}

func TestEngine_CancellationAbortsBetweenOperations(t *testing.T) {
	engine, factory, backend := testEngine(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, []byte(`{"atomic:operations":[
		{"op":"remove","ref":{"type":"performers","id":"5"}}
	]}`))
	pe := protoError(t, err)
	if pe.Status != 499 {
		t.Errorf("status = %d, want 499", pe.Status)
	}
	if len(backend.log) != 0 {
		t.Errorf("log = %v, nothing should have executed", backend.log)
	}
	if !factory.tx.rolledBack {
		t.Error("transaction not rolled back")
	}
}

func TestEngine_UnsupportedCapability(t *testing.T) {
	reg := testRegistry(t)
	backend := &fakeBackend{}
	caps := atomic.NewCapabilities()
	// performers get a handler that can only create.
	caps.Register("performers", &createOnlyHandler{backend: backend})
	engine := atomic.NewEngine(reg, caps, &fakeFactory{})

	_, err := engine.Run(context.Background(), []byte(`{"atomic:operations":[
		{"op":"remove","ref":{"type":"performers","id":"5"}}
	]}`))
	pe := protoError(t, err)
	if pe.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", pe.Status)
	}
	if !strings.Contains(pe.Detail, "does not support delete resource operations") {
		t.Errorf("detail = %q", pe.Detail)
	}
	if pe.Pointer != "/atomic:operations[0]" {
		t.Errorf("pointer = %q", pe.Pointer)
	}
	if len(backend.log) != 0 {
		t.Errorf("log = %v, binding must fail before execution", backend.log)
	}
}

func TestEngine_UnregisteredTypeFailsToBind(t *testing.T) {
	reg := testRegistry(t)
	caps := atomic.NewCapabilities()
	caps.Register("performers", &fakeHandler{typeName: "performers", backend: &fakeBackend{}})
	engine := atomic.NewEngine(reg, caps, &fakeFactory{})

	// tracks exist in the schema but have no handler.
	_, err := engine.Run(context.Background(), []byte(`{"atomic:operations":[
		{"op":"remove","ref":{"type":"tracks","id":"3fa85f64-5717-4562-b3fc-2c963f66afa6"}}
	]}`))
	pe := protoError(t, err)
	if pe.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", pe.Status)
	}
}

type createOnlyHandler struct {
	backend *fakeBackend
}

func (h *createOnlyHandler) CreateResource(_ context.Context, _ atomic.Transaction, res *atomic.Resource, _ atomic.TargetedFields) (*atomic.Resource, error) {
	h.backend.nextID++
	id := strconv.Itoa(h.backend.nextID)
	if err := h.backend.step("create " + res.Type + "/" + id); err != nil {
		return nil, err
	}
	return &atomic.Resource{Type: res.Type, ID: id, Attributes: res.Attributes}, nil
}
