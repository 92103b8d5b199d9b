// Package fixture implements the Fixture Generator (C4): the orchestration
// layer above the Generator Registry (internal/fixture/strategy) that
// config-validates a request, dispatches to the selected strategy, retries
// through a mocking fallback on a detected recursion, and enforces the
// non-nullable-slot-must-not-be-nil invariant spec §4.3 requires.
package fixture

import (
	"errors"

	"github.com/kontrakt-go/kontrakt/internal/constraint"
	"github.com/kontrakt-go/kontrakt/internal/fixture/strategy"
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/mocking"
)

// Context and Request are re-exported so callers outside this package tree
// never need to import internal/fixture/strategy directly.
type (
	Context = strategy.Context
	Request = strategy.Request
)

var NewContext = strategy.NewContext

// Generator is the Fixture Generator: a Registry of strategies plus a
// Mocking Engine fallback for when a recursive structural request cannot
// safely recurse further.
type Generator struct {
	Registry *strategy.Registry
	Mock     mocking.Engine
}

// NewGenerator builds a Generator. mock may be nil, in which case the
// default mocking.ReflectEngine is used for the recursion and no-strategy
// fallbacks.
func NewGenerator(registry *strategy.Registry, mock mocking.Engine) *Generator {
	if mock == nil {
		mock = mocking.ReflectEngine{}
	}
	return &Generator{Registry: registry, Mock: mock}
}

// Generate runs the full §4.3 algorithm: validate configuration, select a
// strategy, invoke it (threading a Regenerator back into this same method
// for Recursive strategies), fall back to the Mocking Engine on a detected
// cycle, and reject a nil result for a non-nullable slot.
func (g *Generator) Generate(ctx *Context, req Request) (any, error) {
	if req.Type == nil {
		return nil, &kerrors.InternalError{Message: "fixture generation requested with a nil TypeDescriptor"}
	}
	if err := constraint.ValidateConfiguration(req.Annotations, req.Type.ValueKind, req.Type.Kind); err != nil {
		return nil, err
	}

	s, ok := g.Registry.Select(req)
	if !ok {
		return g.fallback(req, &kerrors.GenerationFailedError{Reason: "no strategy registered for " + req.Type.TypeID})
	}

	var regen strategy.Regenerator
	if s.Kind() == strategy.Recursive {
		regen = g.Generate
	}

	v, err := s.Generate(ctx, req, regen)
	if err != nil {
		var recErr *kerrors.RecursiveGenerationError
		if errors.As(err, &recErr) {
			return g.fallback(req, err)
		}
		return nil, err
	}

	if v == nil && !req.Type.IsNullable {
		return nil, &kerrors.GenerationFailedError{Reason: "strategy produced nil for non-nullable slot " + req.Name}
	}
	return v, nil
}

// GenerateValidBoundaries runs generateValidBoundaries: the strategy's
// declared edge-case set, used by the ContractAuto boundary sweep.
func (g *Generator) GenerateValidBoundaries(ctx *Context, req Request) ([]any, error) {
	if err := constraint.ValidateConfiguration(req.Annotations, req.Type.ValueKind, req.Type.Kind); err != nil {
		return nil, err
	}
	s, ok := g.Registry.Select(req)
	if !ok {
		return nil, &kerrors.GenerationFailedError{Reason: "no strategy registered for " + req.Type.TypeID}
	}
	var regen strategy.Regenerator
	if s.Kind() == strategy.Recursive {
		regen = g.Generate
	}
	return s.EdgeCases(ctx, req, regen)
}

// GenerateInvalid runs generateInvalid: the strategy's declared
// constraint-violating set, used by the ContractAuto rejection sweep.
func (g *Generator) GenerateInvalid(ctx *Context, req Request) ([]any, error) {
	if err := constraint.ValidateConfiguration(req.Annotations, req.Type.ValueKind, req.Type.Kind); err != nil {
		return nil, err
	}
	s, ok := g.Registry.Select(req)
	if !ok {
		return nil, &kerrors.GenerationFailedError{Reason: "no strategy registered for " + req.Type.TypeID}
	}
	var regen strategy.Regenerator
	if s.Kind() == strategy.Recursive {
		regen = g.Generate
	}
	return s.Invalid(ctx, req, regen)
}

func (g *Generator) fallback(req Request, cause error) (any, error) {
	if req.Type.GoType == nil {
		return nil, cause
	}
	v, err := g.Mock.CreateMock(req.Type.GoType)
	if err != nil {
		return nil, &kerrors.GenerationFailedError{Reason: "mock fallback failed for " + req.Type.TypeID, Cause: err}
	}
	return v, nil
}
