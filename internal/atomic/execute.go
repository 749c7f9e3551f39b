package atomic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mwhitworth/stagehand/internal/jsonapi"
)

// statusClientClosedRequest reports a batch aborted because the caller went
// away. Non-standard, but widely understood.
const statusClientClosedRequest = 499

// Executor runs validated, capability-bound operations strictly in document
// order inside one transaction. The first failing operation rolls back
// everything already applied.
type Executor struct {
	factory TransactionFactory
}

// NewExecutor returns an executor that opens transactions from factory.
func NewExecutor(factory TransactionFactory) *Executor {
	return &Executor{factory: factory}
}

// Execute runs the batch and returns one result per operation, positionally
// aligned with the input. Operations that produce no representation
// contribute a nil entry.
func (e *Executor) Execute(ctx context.Context, containers []*OperationContainer) ([]*jsonapi.OperationResult, error) {
	tx, err := e.factory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch transaction: %w", err)
	}

	tracker := NewLocalIDTracker()
	results := make([]*jsonapi.OperationResult, len(containers))

	for i, op := range containers {
		// Cancellation is honored between operations, never mid-operation.
		if ctx.Err() != nil {
			return nil, e.abort(tx, &jsonapi.Error{
				Status:  statusClientClosedRequest,
				Title:   "The request was canceled.",
				Pointer: entryPointer(op.Index),
			})
		}
		result, err := e.executeOne(ctx, tx, tracker, op)
		if err != nil {
			return nil, e.abort(tx, operationError(err, op.Index))
		}
		results[i] = result
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch transaction: %w", err)
	}
	return results, nil
}

func (e *Executor) executeOne(ctx context.Context, tx Transaction, tracker *LocalIDTracker, op *OperationContainer) (*jsonapi.OperationResult, error) {
	if err := resolveLocalIDs(tracker, op); err != nil {
		return nil, err
	}

	switch op.Kind {
	case OpCreateResource:
		created, err := op.capability.(Creator).CreateResource(ctx, tx, op.Subject, op.Fields)
		if err != nil {
			return nil, err
		}
		if op.Subject.LID != "" {
			if err := tracker.Declare(op.Subject.LID, op.Type.Name, created.ID); err != nil {
				return nil, err
			}
		}
		return &jsonapi.OperationResult{Data: created.Object()}, nil

	case OpUpdateResource:
		updated, err := op.capability.(Updater).UpdateResource(ctx, tx, op.Subject, op.Fields)
		if err != nil {
			return nil, err
		}
		return &jsonapi.OperationResult{Data: updated.Object()}, nil

	case OpDeleteResource:
		return nil, op.capability.(Deleter).DeleteResource(ctx, tx, op.Subject.ID)

	case OpAddToRelationship:
		return nil, op.capability.(RelationshipAdder).AddToRelationship(ctx, tx, op.Subject.ID, *op.Relationship, op.Payload.Refs)

	case OpSetRelationship:
		return nil, op.capability.(RelationshipSetter).SetRelationship(ctx, tx, op.Subject.ID, *op.Relationship, op.Payload.Refs)

	case OpRemoveFromRelationship:
		return nil, op.capability.(RelationshipRemover).RemoveFromRelationship(ctx, tx, op.Subject.ID, *op.Relationship, op.Payload.Refs)

	default:
		return nil, &jsonapi.Error{
			Status: http.StatusInternalServerError,
			Title:  "An unhandled operation kind was encountered.",
			Detail: op.Kind.String(),
		}
	}
}

// resolveLocalIDs substitutes every local-id reference the operation carries
// with the identity declared for it by an earlier create. A create's own lid
// is a declaration, not a use.
func resolveLocalIDs(tracker *LocalIDTracker, op *OperationContainer) error {
	if op.Kind != OpCreateResource && op.Subject.LID != "" && op.Subject.ID == "" {
		id, err := tracker.Resolve(op.Subject.LID, op.Subject.Type)
		if err != nil {
			return err
		}
		op.Subject.ID = id
	}
	for _, linkage := range op.Subject.Relationships {
		if err := resolveLinkage(tracker, linkage); err != nil {
			return err
		}
	}
	return resolveLinkage(tracker, op.Payload)
}

func resolveLinkage(tracker *LocalIDTracker, linkage Linkage) error {
	for i, ref := range linkage.Refs {
		if ref.LID == "" || ref.ID != "" {
			continue
		}
		id, err := tracker.Resolve(ref.LID, ref.Type)
		if err != nil {
			return err
		}
		linkage.Refs[i].ID = id
	}
	return nil
}

// operationError shapes an execution failure so the response names the
// failing operation. Handler errors that are not protocol errors become
// opaque internal failures.
func operationError(err error, index int) error {
	var protoErr *jsonapi.Error
	if errors.As(err, &protoErr) {
		if protoErr.Pointer == "" {
			protoErr.Pointer = entryPointer(index)
		}
		return protoErr
	}
	return &jsonapi.Error{
		Status:  http.StatusInternalServerError,
		Title:   "Failed to execute operation.",
		Detail:  err.Error(),
		Pointer: entryPointer(index),
	}
}

func (e *Executor) abort(tx Transaction, cause error) error {
	if err := tx.Rollback(); err != nil {
		return errors.Join(cause, fmt.Errorf("rollback batch transaction: %w", err))
	}
	return cause
}
