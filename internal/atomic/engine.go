package atomic

import (
	"context"

	"github.com/mwhitworth/stagehand/internal/jsonapi"
	"github.com/mwhitworth/stagehand/internal/schema"
)

// Engine wires the batch pipeline together: parse, validate, bind
// capabilities, execute, assemble results.
type Engine struct {
	validator    *Validator
	capabilities *Capabilities
	executor     *Executor
}

// NewEngine builds an engine over the given schema registry, capability
// registry, and transaction factory.
func NewEngine(registry *schema.Registry, capabilities *Capabilities, factory TransactionFactory) *Engine {
	return &Engine{
		validator:    NewValidator(registry),
		capabilities: capabilities,
		executor:     NewExecutor(factory),
	}
}

// Run processes one operations request body end to end. A nil document with
// a nil error means every operation completed without producing a result,
// which callers answer with 204 No Content.
func (e *Engine) Run(ctx context.Context, body []byte) (*jsonapi.ResultsDocument, error) {
	ops, err := ParseOperations(body)
	if err != nil {
		return nil, err
	}
	containers, err := e.validator.ValidateOperations(ops)
	if err != nil {
		return nil, err
	}
	if err := e.capabilities.Bind(containers); err != nil {
		return nil, err
	}
	results, err := e.executor.Execute(ctx, containers)
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		if result != nil {
			return &jsonapi.ResultsDocument{
				JSONAPI: jsonapi.AtomicImplementation(),
				Results: results,
			}, nil
		}
	}
	return nil, nil
}
