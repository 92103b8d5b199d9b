package typegraph

import "reflect"

// Kind discriminates the TypeDescriptor sum type's variants.
type Kind string

const (
	KindValue      Kind = "Value"
	KindContainer  Kind = "Container"
	KindMap        Kind = "Map"
	KindArray      Kind = "Array"
	KindStructural Kind = "Structural"
)

// ValueKind discriminates the atomic Value variant further.
type ValueKind string

const (
	ValueInt     ValueKind = "Int"
	ValueLong    ValueKind = "Long"
	ValueDouble  ValueKind = "Double"
	ValueDecimal ValueKind = "Decimal"
	ValueBool    ValueKind = "Bool"
	ValueString  ValueKind = "String"
	ValueUUID    ValueKind = "UUID"
	ValueTime    ValueKind = "Time"
	ValueEnum    ValueKind = "Enum"
)

// Param describes one constructor or method parameter: a name, its
// resolved type, and its own annotations (constraints apply per-parameter,
// not only per-type).
type Param struct {
	Name        string
	Type        *Descriptor
	Annotations Annotations
}

// Constructor is a callable that produces an instance of a Structural type
// from resolved parameter values. The Structural strategy selects the
// primary constructor (first registered) and invokes it; Invoke wraps
// reflect.Value.Call so the rest of the core never touches reflect.Value
// directly.
type Constructor struct {
	Params []Param
	Invoke func(args []any) (any, error)
}

// Method describes a target's invocable method: used by the Scenario
// Executor to resolve and call the entry point.
type Method struct {
	Name    string
	Params  []Param
	Returns *Descriptor
	Call    func(receiver any, args []any) (any, error)
}

// ArrayOps is the instantiator/setter pair an Array TypeDescriptor carries so
// that strategies never need reflection over platform arrays directly (they
// call these closures instead).
type ArrayOps struct {
	Instantiate func(size int) any
	Set         func(arr any, index int, value any)
	Get         func(arr any, index int) any
	Len         func(arr any) int
}

// Descriptor is the immutable TypeDescriptor IR: a tagged sum over Kind: one
// set of fields is meaningful per variant, enforced by convention (zero
// value on the inapplicable fields) rather than a Go sum-type library, which
// the ecosystem this framework was grounded on does not use either.
type Descriptor struct {
	TypeID        string
	SimpleName    string
	QualifiedName string
	IsNullable    bool
	IsInline      bool
	Annotations   Annotations
	Kind          Kind

	// reflect.Type this descriptor resolved from; kept so downstream
	// packages (instance factory, registry) can build reflect.Value trees
	// without re-resolving.
	GoType reflect.Type

	// Value
	ValueKind  ValueKind
	EnumValues []string

	// Container
	ElementType func() *Descriptor // lazy: breaks self-referential container cycles

	// Map
	KeyType   func() *Descriptor
	ValueType func() *Descriptor

	// Array
	ComponentType func() *Descriptor
	IsPrimitive   bool
	Array         ArrayOps

	// Structural
	TypeArguments []*Descriptor
	Constructors  func() []Constructor // lazy: breaks cycles through constructor params
	Properties    func() []Param       // lazy
	Methods       func() []Method      // lazy
	// Candidates lists concrete implementors for a Sealed/polymorphic
	// (interface) Structural type. Empty for a concrete struct type.
	Candidates func() []*Descriptor
}

// IsSealed reports whether this Structural descriptor represents an
// interface with a registered, non-empty candidate set.
func (d *Descriptor) IsSealed() bool {
	if d == nil || d.Kind != KindStructural || d.Candidates == nil {
		return false
	}
	return len(d.Candidates()) > 0
}

func (d *Descriptor) String() string { return d.TypeID }
