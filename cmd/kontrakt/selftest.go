package main

import (
	"fmt"
	"reflect"

	"github.com/kontrakt-go/kontrakt/internal/discovery"
)

// Go has no classpath or annotation processor for a host CLI to scan at
// process start the way the original collaborator tool does — discovery
// here is always driven by a Registrar the embedding program populates in
// code (see internal/discovery's package doc). This demonstration
// registers a handful of sample targets against the framework's own
// sample contract so the binary has something to execute out of the
// box; a real embedding program registers its own targets the same way
// instead of importing this file.

type greeting struct {
	Prefix string
}

func (g greeting) Test() string { return g.Prefix + "hello" }

type rounder interface {
	Round(v float64) int
}

type truncatingRounder struct{}

func (truncatingRounder) Round(v float64) int { return int(v) }

type coordinate struct {
	X int
	Y int
}

func (c coordinate) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

func buildSelfTestRegistrar() *discovery.Registrar {
	reg := discovery.NewRegistrar()
	reg.RegisterManual(reflect.TypeOf(greeting{}), "greeting", "github.com/kontrakt-go/kontrakt/cmd/kontrakt.greeting")
	reg.RegisterContract(reflect.TypeOf((*rounder)(nil)).Elem(), reflect.TypeOf(truncatingRounder{}))
	reg.RegisterDataContract(reflect.TypeOf(coordinate{}), "coordinate", "github.com/kontrakt-go/kontrakt/cmd/kontrakt.coordinate")
	return reg
}
