package typegraph

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/kerrors"
)

// ConstructorLookup returns the registered constructors for a concrete
// Structural type, in priority order (first is primary), or nil if none are
// registered — in which case the session falls back to a field-assignment
// default constructor built from the type's exported fields.
type ConstructorLookup func(t reflect.Type) []Constructor

// CandidateLookup returns the concrete implementors registered for an
// interface type — the Sealed/polymorphic candidate set. An interface with
// no registered candidates resolves as an ordinary (non-sealed) Structural
// descriptor; the Discovery linker is responsible for populating this
// before resolution, per spec §4.2's "pre-validated by the Discovery
// linker" requirement.
type CandidateLookup func(iface reflect.Type) []reflect.Type

// Options configures a ResolverSession.
type Options struct {
	Constructors ConstructorLookup
	Candidates   CandidateLookup
	// TimeType lets callers point at their own time value type; nil
	// defaults to the standard library's time.Time. There is no UUID
	// option: a type named UUID is classified as a UUID value.
	TimeType reflect.Type
}

// Session is a ResolverSession: session-scoped, closable, caching Resolve
// results so that equal typeIds are identical *Descriptor values within one
// session (invariant I1), and so resolution never leaks across tests
// (invariant I3 — no global cache).
type Session struct {
	mu     sync.Mutex
	cache  map[string]*Descriptor
	opts   Options
	closed bool
}

// Open starts a new resolver session. Call Close when done; a closed
// session rejects further Resolve calls.
func Open(opts Options) *Session {
	if opts.TimeType == nil {
		opts.TimeType = reflect.TypeOf(time.Time{})
	}
	return &Session{cache: map[string]*Descriptor{}, opts: opts}
}

// Close releases the session's cache. Further Resolve calls return
// SessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cache = nil
}

// Resolve translates a reflect.Type into its canonical Descriptor,
// classifying it by taxonomy on a cache miss (§4.1 algorithm).
func (s *Session) Resolve(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, &kerrors.InternalError{Message: "resolve called with nil reflect.Type"}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, &kerrors.InternalError{Message: "resolver session is closed"}
	}
	id := canonicalTypeID(t)
	if d, ok := s.cache[id]; ok {
		s.mu.Unlock()
		return d, nil
	}
	s.mu.Unlock()

	d, err := s.classify(t, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, &kerrors.InternalError{Message: "resolver session is closed"}
	}
	// Another goroutine may have raced us to the same id; keep whichever
	// was stored first so equal typeId ⇒ identical descriptor (I1) holds
	// even under concurrent resolution within one session.
	if existing, ok := s.cache[id]; ok {
		return existing, nil
	}
	s.cache[id] = d
	return d, nil
}

// canonicalTypeID builds the typeId: package-qualified name + generic
// arguments + nullability suffix.
func canonicalTypeID(t reflect.Type) string {
	nullable := false
	base := t
	for base.Kind() == reflect.Ptr {
		nullable = true
		base = base.Elem()
	}
	id := qualifiedName(base)
	if base.Kind() == reflect.Slice || base.Kind() == reflect.Array {
		id = fmt.Sprintf("%s<%s>", id, canonicalTypeID(base.Elem()))
	}
	if base.Kind() == reflect.Map {
		id = fmt.Sprintf("%s<%s,%s>", id, canonicalTypeID(base.Key()), canonicalTypeID(base.Elem()))
	}
	if nullable {
		id += "?"
	}
	return id
}

func qualifiedName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.String() // builtins and unnamed composite types
	}
	return t.PkgPath() + "." + t.Name()
}

func (s *Session) classify(t reflect.Type, id string) (*Descriptor, error) {
	nullable := t.Kind() == reflect.Ptr || t.Kind() == reflect.Interface
	base := t
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}

	d := &Descriptor{
		TypeID:        id,
		SimpleName:    base.Name(),
		QualifiedName: qualifiedName(base),
		IsNullable:    nullable,
		GoType:        t,
	}

	switch {
	case isValueType(base, s.opts.TimeType):
		return s.classifyValue(d, base)
	case base.Kind() == reflect.Array || base.Kind() == reflect.Slice && isByteLike(base):
		return s.classifyArray(d, base)
	case base.Kind() == reflect.Map:
		return s.classifyMap(d, base)
	case base.Kind() == reflect.Slice:
		return s.classifyContainer(d, base)
	case base.Kind() == reflect.Struct || base.Kind() == reflect.Interface:
		return s.classifyStructural(d, base)
	default:
		return nil, &kerrors.ConfigurationError{Message: fmt.Sprintf("unsupported source type: %s", base.String())}
	}
}

func isByteLike(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func isValueType(t reflect.Type, timeType reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	if timeType != nil && t == timeType {
		return true
	}
	if t.Name() == "UUID" || strings.HasSuffix(t.PkgPath(), "uuid") {
		return true
	}
	return false
}

func (s *Session) classifyValue(d *Descriptor, t reflect.Type) (*Descriptor, error) {
	d.Kind = KindValue
	switch t.Kind() {
	case reflect.Bool:
		d.ValueKind = ValueBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		d.ValueKind = ValueInt
	case reflect.Int64:
		d.ValueKind = ValueLong
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		d.ValueKind = ValueLong
	case reflect.Float32:
		d.ValueKind = ValueDouble
	case reflect.Float64:
		d.ValueKind = ValueDouble
	case reflect.String:
		d.ValueKind = ValueString
	default:
		if t == s.opts.TimeType {
			d.ValueKind = ValueTime
		} else if t.Name() == "UUID" {
			d.ValueKind = ValueUUID
		} else {
			d.ValueKind = ValueDecimal
		}
	}
	// Enum convention: a defined (named) integer or string type with a
	// registered value set recorded via annotation attribute "values" is
	// treated as Enum; callers attach this through struct-tag annotations
	// on the *field*, not the type, so plain classification leaves
	// ValueKind as the underlying numeric/string kind. A field-level
	// EnumValues override is applied by the caller after Resolve when
	// needed (see internal/fixture/strategy's enum strategy).
	return d, nil
}

func (s *Session) classifyArray(d *Descriptor, t reflect.Type) (*Descriptor, error) {
	d.Kind = KindArray
	d.IsPrimitive = isPrimitiveKind(t.Elem().Kind())
	elem := t.Elem()
	d.ComponentType = func() *Descriptor {
		cd, err := s.Resolve(elem)
		if err != nil {
			return &Descriptor{TypeID: "<error>"}
		}
		return cd
	}
	d.Array = buildArrayOps(t)
	return d, nil
}

func isPrimitiveKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func buildArrayOps(t reflect.Type) ArrayOps {
	elem := t.Elem()
	return ArrayOps{
		Instantiate: func(size int) any {
			return reflect.MakeSlice(reflect.SliceOf(elem), size, size).Interface()
		},
		Set: func(arr any, index int, value any) {
			v := reflect.ValueOf(arr)
			if v.Kind() == reflect.Ptr {
				v = v.Elem()
			}
			ev := reflect.ValueOf(value)
			if !ev.IsValid() {
				ev = reflect.Zero(elem)
			}
			v.Index(index).Set(ev)
		},
		Get: func(arr any, index int) any {
			v := reflect.ValueOf(arr)
			if v.Kind() == reflect.Ptr {
				v = v.Elem()
			}
			return v.Index(index).Interface()
		},
		Len: func(arr any) int {
			v := reflect.ValueOf(arr)
			if v.Kind() == reflect.Ptr {
				v = v.Elem()
			}
			return v.Len()
		},
	}
}

func (s *Session) classifyMap(d *Descriptor, t reflect.Type) (*Descriptor, error) {
	d.Kind = KindMap
	key := t.Key()
	val := t.Elem()
	d.KeyType = func() *Descriptor {
		kd, err := s.Resolve(key)
		if err != nil {
			return &Descriptor{TypeID: "<error>"}
		}
		return kd
	}
	d.ValueType = func() *Descriptor {
		vd, err := s.Resolve(val)
		if err != nil {
			return &Descriptor{TypeID: "<error>"}
		}
		return vd
	}
	return d, nil
}

func (s *Session) classifyContainer(d *Descriptor, t reflect.Type) (*Descriptor, error) {
	d.Kind = KindContainer
	elem := t.Elem()
	d.ElementType = func() *Descriptor {
		ed, err := s.Resolve(elem)
		if err != nil {
			return &Descriptor{TypeID: "<error>"}
		}
		return ed
	}
	return d, nil
}

func (s *Session) classifyStructural(d *Descriptor, t reflect.Type) (*Descriptor, error) {
	d.Kind = KindStructural

	if t.Kind() == reflect.Interface {
		d.Candidates = func() []*Descriptor {
			if s.opts.Candidates == nil {
				return nil
			}
			impls := s.opts.Candidates(t)
			out := make([]*Descriptor, 0, len(impls))
			for _, it := range impls {
				cd, err := s.Resolve(it)
				if err == nil {
					out = append(out, cd)
				}
			}
			return out
		}
		d.Properties = func() []Param { return nil }
		d.Constructors = func() []Constructor { return nil }
		d.Methods = func() []Method { return methodsOf(s, t) }
		return d, nil
	}

	// Lazy edges: properties/constructors resolve child types only when
	// walked, so a self-referential struct (A holds *A) does not recurse
	// during classify itself — only when a consumer actually calls
	// Properties()/Constructors() and then resolves the nested field type,
	// at which point the cycle is the Fixture Generator's concern (history
	// tracking), not the resolver's.
	d.Properties = func() []Param {
		return fieldParams(s, t)
	}
	d.Constructors = func() []Constructor {
		if s.opts.Constructors != nil {
			if cs := s.opts.Constructors(t); len(cs) > 0 {
				return cs
			}
		}
		return []Constructor{defaultConstructor(s, t)}
	}
	d.Methods = func() []Method { return methodsOf(s, t) }
	return d, nil
}

func fieldParams(s *Session, t reflect.Type) []Param {
	out := make([]Param, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		ft := f.Type
		out = append(out, Param{
			Name: f.Name,
			Type: func() *Descriptor {
				pd, err := s.Resolve(ft)
				if err != nil {
					return &Descriptor{TypeID: "<error>"}
				}
				return pd
			}(),
			Annotations: ParseAnnotations(f.Tag.Get("ktr")),
		})
	}
	return out
}

// defaultConstructor builds a field-assignment constructor for a type with
// no explicitly registered constructor: the idiomatic Go shape, since
// exported-struct-literal construction is how Go code is normally built
// (there is no reflective "primary constructor" concept to discover).
func defaultConstructor(s *Session, t reflect.Type) Constructor {
	params := fieldParams(s, t)
	return Constructor{
		Params: params,
		Invoke: func(args []any) (any, error) {
			if len(args) != len(params) {
				return nil, &kerrors.InternalError{Message: fmt.Sprintf("default constructor for %s: arg count mismatch", t.String())}
			}
			ptr := reflect.New(t)
			v := ptr.Elem()
			fieldIdx := 0
			for i := 0; i < t.NumField(); i++ {
				if !t.Field(i).IsExported() {
					continue
				}
				av := reflect.ValueOf(args[fieldIdx])
				if !av.IsValid() {
					av = reflect.Zero(t.Field(i).Type)
				}
				v.Field(i).Set(av)
				fieldIdx++
			}
			return ptr.Interface(), nil
		},
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// methodsOf builds the invocable Method set for t (struct or interface),
// wiring Call as a reflect.Value.Call wrapper so the Scenario Executor
// never touches reflect directly. An interface Type's method signatures
// exclude the receiver; a concrete type's include it at index 0 — reflect
// itself draws this distinction, so the offset is derived from t.Kind().
func methodsOf(s *Session, t reflect.Type) []Method {
	out := make([]Method, 0, t.NumMethod())
	offset := 1
	if t.Kind() == reflect.Interface {
		offset = 0
	}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		mt := m.Type
		name := m.Name

		hasError := mt.NumOut() > 0 && mt.Out(mt.NumOut()-1) == errorType
		valueOuts := mt.NumOut()
		if hasError {
			valueOuts--
		}

		params := make([]Param, 0, mt.NumIn()-offset)
		for j := offset; j < mt.NumIn(); j++ {
			pt := mt.In(j)
			params = append(params, Param{
				Name: fmt.Sprintf("arg%d", j-offset),
				Type: func() *Descriptor {
					pd, err := s.Resolve(pt)
					if err != nil {
						return &Descriptor{TypeID: "<error>"}
					}
					return pd
				}(),
			})
		}

		var returns *Descriptor
		if valueOuts > 0 {
			rt := mt.Out(0)
			returns = func() *Descriptor {
				rd, err := s.Resolve(rt)
				if err != nil {
					return &Descriptor{TypeID: "<error>"}
				}
				return rd
			}()
		}

		out = append(out, Method{
			Name:    name,
			Params:  params,
			Returns: returns,
			Call:    callViaReflect(name, valueOuts, hasError),
		})
	}
	return out
}

// callViaReflect invokes a method by name on receiver through
// reflect.Value.MethodByName, supplying a zero value of the expected
// parameter type for any nil argument (the Fixture Generator never
// produces nil for a non-nullable slot, but an explicitly nullable one
// legitimately can).
func callViaReflect(name string, valueOuts int, hasError bool) func(receiver any, args []any) (any, error) {
	return func(receiver any, args []any) (any, error) {
		rv := reflect.ValueOf(receiver)
		method := rv.MethodByName(name)
		if !method.IsValid() {
			return nil, &kerrors.InternalError{Message: fmt.Sprintf("method %s not found on %s", name, rv.Type().String())}
		}
		mt := method.Type()
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			if a == nil && i < mt.NumIn() {
				in[i] = reflect.Zero(mt.In(i))
				continue
			}
			in[i] = reflect.ValueOf(a)
		}
		results := method.Call(in)
		var callErr error
		if hasError {
			if errVal, ok := results[len(results)-1].Interface().(error); ok {
				callErr = errVal
			}
		}
		if valueOuts > 0 {
			return results[0].Interface(), callErr
		}
		return nil, callErr
	}
}
