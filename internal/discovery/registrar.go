package discovery

import "reflect"

// ContractEntry registers one contract interface together with every
// concrete implementation a collaborator wants discovered against it —
// replacing the classpath scan the original relies on to find
// implementors of an annotated interface.
type ContractEntry struct {
	Interface       reflect.Type
	Implementations []reflect.Type
}

// ManualEntry registers one user-scenario target — the programmatic
// equivalent of a class carrying a manual-test marker annotation.
type ManualEntry struct {
	Type               reflect.Type
	DisplayName        string
	FullyQualifiedName string
}

// DataContractEntry registers one data-compliance target.
type DataContractEntry struct {
	Type               reflect.Type
	DisplayName        string
	FullyQualifiedName string
}

// Registrar is the explicit registration surface Discovery walks, and the
// source of truth the dependency-strategy-inference table (§4.4 step 4)
// consults for each constructor parameter's type.
type Registrar struct {
	Contracts     []ContractEntry
	ManualTargets []ManualEntry
	DataContracts []DataContractEntry

	// Implementations maps an interface/abstract type to its known
	// concrete implementors, in registration order — used for resolving a
	// plain interface dependency to Real(first implementation); contract-auto
	// enumeration walks each ContractEntry's own Implementations instead.
	Implementations map[reflect.Type][]reflect.Type

	// Stateful marks a concrete type that must be satisfied with a
	// StatefulFake dependency rather than a StatelessMock/Real one.
	Stateful map[reflect.Type]bool

	// ContractImplementations overrides a concrete dependency type with an
	// explicit implementing type (the `@Contract(implementingClass=...)`
	// case), when the declared type itself should not be instantiated
	// directly.
	ContractImplementations map[reflect.Type]reflect.Type

	// ClockType is the platform clock-equivalent type; a dependency of
	// exactly this type resolves to Environment("TIME") rather than Real.
	ClockType reflect.Type
}

// NewRegistrar builds an empty Registrar ready for incremental registration.
func NewRegistrar() *Registrar {
	return &Registrar{
		Implementations:         map[reflect.Type][]reflect.Type{},
		Stateful:                map[reflect.Type]bool{},
		ContractImplementations: map[reflect.Type]reflect.Type{},
	}
}

// RegisterContract adds a contract interface with its known implementors,
// and also records the implementors under Implementations so the
// dependency-inference table's "interface with impls" branch can find
// them even for interfaces never otherwise registered as a contract.
func (r *Registrar) RegisterContract(iface reflect.Type, impls ...reflect.Type) {
	r.Contracts = append(r.Contracts, ContractEntry{Interface: iface, Implementations: impls})
	r.Implementations[iface] = append(r.Implementations[iface], impls...)
}

// RegisterManual adds a user-scenario target.
func (r *Registrar) RegisterManual(t reflect.Type, displayName, fqn string) {
	r.ManualTargets = append(r.ManualTargets, ManualEntry{Type: t, DisplayName: displayName, FullyQualifiedName: fqn})
}

// RegisterDataContract adds a data-compliance target.
func (r *Registrar) RegisterDataContract(t reflect.Type, displayName, fqn string) {
	r.DataContracts = append(r.DataContracts, DataContractEntry{Type: t, DisplayName: displayName, FullyQualifiedName: fqn})
}

// MarkStateful flags t as requiring a StatefulFake dependency strategy.
func (r *Registrar) MarkStateful(t reflect.Type) { r.Stateful[t] = true }

// RegisterImplementingClass records the `@Contract(implementingClass=...)`
// override for a concrete dependency type.
func (r *Registrar) RegisterImplementingClass(declared, implementing reflect.Type) {
	r.ContractImplementations[declared] = implementing
}
