// Package mocking is the default Mocking Engine adapter: the smallest
// reflect-based stand-in for an external mocking collaborator (§4.3's
// "RecursiveGenerationFailed falls back to a mock instance" and the
// Instance Factory's StatelessMock dependency strategy both call through
// Engine rather than a concrete library, since the real mocking engine a
// production deployment wires in is outside this framework's scope —
// exactly as spec.md's Non-goals exclude a bundled mock-object library).
package mocking

import (
	"reflect"

	"github.com/kontrakt-go/kontrakt/internal/kerrors"
)

// Engine creates zero-behavior stand-ins for a type the Instance Factory or
// Fixture Generator could not otherwise produce: a recursive structural
// type past its cycle guard, or a dependency whose MockingStrategy is
// StatelessMock/StatefulFake.
type Engine interface {
	// CreateMock returns a stateless zero-value instance of t: every field
	// zeroed, every method a no-op. Used for StatelessMock dependencies and
	// as the RecursiveGenerationFailed fallback.
	CreateMock(t reflect.Type) (any, error)
	// CreateFake returns a stateful instance seeded with zero values but
	// distinct per call, for StatefulFake dependencies that need identity
	// (two fakes of the same type must not be the same pointer).
	CreateFake(t reflect.Type) (any, error)
}

// ReflectEngine is the built-in Engine: it allocates a zero value via
// reflect.New and returns it, with no behavior synthesis. A real deployment
// replacing this with a generated-mock or fake library only needs to
// satisfy Engine; nothing downstream depends on ReflectEngine directly.
type ReflectEngine struct{}

func (ReflectEngine) CreateMock(t reflect.Type) (any, error) {
	if t == nil {
		return nil, &kerrors.InternalError{Message: "CreateMock called with nil reflect.Type"}
	}
	switch t.Kind() {
	case reflect.Ptr:
		return reflect.New(t.Elem()).Interface(), nil
	case reflect.Interface:
		return nil, nil
	default:
		return reflect.New(t).Elem().Interface(), nil
	}
}

// CreateFake behaves like CreateMock: the reflect-only engine has no
// behavioral state to distinguish a fake from a mock, but returns a freshly
// allocated value each call so reference identity still differs between
// fakes of the same type.
func (e ReflectEngine) CreateFake(t reflect.Type) (any, error) {
	return e.CreateMock(t)
}
