package graph

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// StructSchema implements StateSchema for a struct state type. Fields are
// named by their json tag (or Go name when untagged) and take their
// defaults from the value given to NewStructSchema.
type StructSchema[S any] struct {
	typ      reflect.Type
	defaults S
	fields   []structField
	index    map[string]int
	reducers map[string]Reducer
	lenient  bool
}

type structField struct {
	name  string
	index []int
	typ   reflect.Type
}

// NewStructSchema builds a schema for S. S must be a struct type.
func NewStructSchema[S any](defaults S, opts ...SchemaOption) (*StructSchema[S], error) {
	t := reflect.TypeOf(defaults)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("state type %v is not a struct", t)
	}

	o := buildSchemaOptions(opts)
	s := &StructSchema[S]{
		typ:      t,
		defaults: defaults,
		index:    make(map[string]int),
		reducers: o.reducers,
		lenient:  o.lenient,
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		if _, dup := s.index[name]; dup {
			return nil, fmt.Errorf("state type %v declares field %q twice", t, name)
		}
		s.index[name] = len(s.fields)
		s.fields = append(s.fields, structField{name: name, index: f.Index, typ: f.Type})
	}

	for field := range s.reducers {
		if _, ok := s.index[field]; !ok {
			return nil, fmt.Errorf("reducer for %w: %s", ErrUnknownField, field)
		}
	}

	return s, nil
}

// MustStructSchema is like NewStructSchema but panics on error. It is meant
// for package-level schema variables.
func MustStructSchema[S any](defaults S, opts ...SchemaOption) *StructSchema[S] {
	s, err := NewStructSchema(defaults, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *StructSchema[S]) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

func (s *StructSchema[S]) Init() S {
	return s.defaults
}

// Seed fills every zero-valued field of initial with its declared default.
// A struct cannot tell an omitted field from one set to its zero value, so
// both count as omitted.
func (s *StructSchema[S]) Seed(initial S) (S, error) {
	out := reflect.New(s.typ).Elem()
	out.Set(reflect.ValueOf(initial))
	defaults := reflect.ValueOf(s.defaults)
	for _, f := range s.fields {
		if target := out.FieldByIndex(f.index); target.IsZero() {
			target.Set(defaults.FieldByIndex(f.index))
		}
	}
	return out.Interface().(S), nil
}

// Snapshot returns state itself; a struct is already passed by value.
func (s *StructSchema[S]) Snapshot(state S) S {
	return state
}

// SeedFields builds a state from the defaults plus the given fields.
func (s *StructSchema[S]) SeedFields(fields Update) (S, error) {
	return s.Apply(s.defaults, fields)
}

func (s *StructSchema[S]) Get(state S, field string) (any, bool) {
	i, ok := s.index[field]
	if !ok {
		return nil, false
	}
	return reflect.ValueOf(state).FieldByIndex(s.fields[i].index).Interface(), true
}

func (s *StructSchema[S]) Apply(state S, update Update) (S, error) {
	out := reflect.New(s.typ).Elem()
	out.Set(reflect.ValueOf(state))

	for _, k := range update.Keys() {
		i, ok := s.index[k]
		if !ok {
			if s.lenient {
				continue
			}
			var zero S
			return zero, fmt.Errorf("%w: %s", ErrUnknownField, k)
		}
		f := s.fields[i]
		target := out.FieldByIndex(f.index)

		v := update[k]
		if reducer, ok := s.reducers[k]; ok {
			merged, err := reducer(target.Interface(), v)
			if err != nil {
				var zero S
				return zero, fmt.Errorf("failed to reduce key %s: %w", k, err)
			}
			v = merged
		}

		rv, err := coerce(v, f.typ)
		if err != nil {
			var zero S
			return zero, fmt.Errorf("%w: %s: %v", ErrFieldType, k, err)
		}
		target.Set(rv)
	}

	return out.Interface().(S), nil
}

// coerce converts v to typ. Assignable values pass through; numbers convert
// between numeric kinds when no precision is lost.
func coerce(v any, typ reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(typ), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(typ) {
		return rv, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(typ.Kind()) && rv.CanConvert(typ) {
		converted := rv.Convert(typ)
		if converted.Convert(rv.Type()).Equal(rv) {
			return converted, nil
		}
		return reflect.Value{}, fmt.Errorf("%v does not fit %s", v, typ)
	}
	return reflect.Value{}, fmt.Errorf("expected %s, got %T", typ, v)
}

var numericKinds = []reflect.Kind{
	reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
	reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
	reflect.Float32, reflect.Float64,
}

func isNumeric(k reflect.Kind) bool {
	return slices.Contains(numericKinds, k)
}
