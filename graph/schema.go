package graph

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// StateSchema declares the fields of a graph state, their defaults and how
// updates merge into a state.
type StateSchema[S any] interface {
	// Fields returns the declared field names in declaration order.
	Fields() []string

	// Init returns a state with every field at its default.
	Init() S

	// Seed prepares a caller-supplied initial state for a run.
	Seed(initial S) (S, error)

	// Get reads a field. It reports false only for undeclared fields; a
	// declared field that was never populated yields its default.
	Get(state S, field string) (any, bool)

	// Apply merges an update into state and returns the new state. The
	// state passed in is never modified.
	Apply(state S, update Update) (S, error)

	// Snapshot returns a copy of state for a node or router to read, so
	// that writes to it never reach the running state.
	Snapshot(state S) S
}

// Reducer defines how a state value should be updated.
// It takes the current value and the new value, and returns the merged value.
// A reducer must not modify current in place.
type Reducer func(current, new any) (any, error)

type schemaOptions struct {
	lenient  bool
	reducers map[string]Reducer
}

// SchemaOption configures a StructSchema or MapSchema.
type SchemaOption func(*schemaOptions)

// WithLenient makes the schema ignore update keys it does not declare
// instead of rejecting them.
func WithLenient() SchemaOption {
	return func(o *schemaOptions) {
		o.lenient = true
	}
}

// WithReducer replaces the overwrite merge for one field.
func WithReducer(field string, reducer Reducer) SchemaOption {
	return func(o *schemaOptions) {
		if o.reducers == nil {
			o.reducers = make(map[string]Reducer)
		}
		o.reducers[field] = reducer
	}
}

func buildSchemaOptions(opts []SchemaOption) schemaOptions {
	o := schemaOptions{reducers: make(map[string]Reducer)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MapSchema implements StateSchema for map[string]any with declared fields
// and defaults.
type MapSchema struct {
	fields   []string
	defaults map[string]any
	reducers map[string]Reducer
	lenient  bool
}

var _ StateSchema[map[string]any] = (*MapSchema)(nil)

// NewMapSchema declares a map state. defaults lists every field with its
// default value.
func NewMapSchema(defaults map[string]any, opts ...SchemaOption) *MapSchema {
	o := buildSchemaOptions(opts)
	fields := make([]string, 0, len(defaults))
	for k := range defaults {
		fields = append(fields, k)
	}
	slices.Sort(fields)
	return &MapSchema{
		fields:   fields,
		defaults: maps.Clone(defaults),
		reducers: o.reducers,
		lenient:  o.lenient,
	}
}

// RegisterReducer adds a reducer for a specific key. Runnables compiled
// before the call keep the reducers they were compiled with.
func (s *MapSchema) RegisterReducer(key string, reducer Reducer) {
	if s.reducers == nil {
		s.reducers = make(map[string]Reducer)
	}
	s.reducers[key] = reducer
}

func (s *MapSchema) cloneSchema() any {
	c := *s
	c.reducers = maps.Clone(s.reducers)
	return &c
}

func (s *MapSchema) Fields() []string {
	return slices.Clone(s.fields)
}

func (s *MapSchema) Init() map[string]any {
	return maps.Clone(s.defaults)
}

// Seed fills in defaults for every field the caller omitted.
func (s *MapSchema) Seed(initial map[string]any) (map[string]any, error) {
	return s.Apply(s.Init(), Update(initial))
}

// Snapshot returns a shallow copy of state.
func (s *MapSchema) Snapshot(state map[string]any) map[string]any {
	return maps.Clone(state)
}

func (s *MapSchema) Get(state map[string]any, field string) (any, bool) {
	def, declared := s.defaults[field]
	if !declared {
		return nil, false
	}
	if v, ok := state[field]; ok {
		return v, true
	}
	return def, true
}

func (s *MapSchema) Apply(state map[string]any, update Update) (map[string]any, error) {
	result := make(map[string]any, len(s.defaults))
	maps.Copy(result, state)

	for _, k := range update.Keys() {
		v := update[k]
		def, declared := s.defaults[k]
		if !declared {
			if s.lenient {
				continue
			}
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, k)
		}

		if reducer, ok := s.reducers[k]; ok {
			current, present := result[k]
			if !present {
				current = def
			}
			merged, err := reducer(current, v)
			if err != nil {
				return nil, fmt.Errorf("failed to reduce key %s: %w", k, err)
			}
			v = merged
		}

		if def != nil && v != nil && !reflect.TypeOf(v).AssignableTo(reflect.TypeOf(def)) {
			return nil, fmt.Errorf("%w: %s expects %T, got %T", ErrFieldType, k, def, v)
		}
		result[k] = v
	}

	return result, nil
}

// Value reads a typed field from a map state, returning the zero value of V
// when the field is missing or holds another type.
func Value[V any](state map[string]any, field string) V {
	v, _ := state[field].(V)
	return v
}

// FieldValue reads a typed field through a schema so unset fields yield
// their declared default.
func FieldValue[V any, S any](schema StateSchema[S], state S, field string) (V, error) {
	var zero V
	raw, ok := schema.Get(state, field)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if raw == nil {
		return zero, nil
	}
	v, ok := raw.(V)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrFieldType, field, raw)
	}
	return v, nil
}

// Common Reducers

// OverwriteReducer replaces the old value with the new one.
func OverwriteReducer(_, new any) (any, error) {
	return new, nil
}

// AppendReducer appends the new value to the current slice, always
// returning a freshly allocated slice. It accepts either a slice or a single
// element as the new value.
func AppendReducer(current, new any) (any, error) {
	newVal := reflect.ValueOf(new)
	if !newVal.IsValid() {
		return current, nil
	}
	if current == nil {
		if newVal.Kind() == reflect.Slice {
			out := reflect.MakeSlice(newVal.Type(), newVal.Len(), newVal.Len())
			reflect.Copy(out, newVal)
			return out.Interface(), nil
		}
		slice := reflect.MakeSlice(reflect.SliceOf(newVal.Type()), 0, 1)
		return reflect.Append(slice, newVal).Interface(), nil
	}

	currVal := reflect.ValueOf(current)
	if currVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("current value is not a slice")
	}

	elem := currVal.Type().Elem()
	extra := 1
	if newVal.Kind() == reflect.Slice {
		extra = newVal.Len()
	}
	out := reflect.MakeSlice(currVal.Type(), 0, currVal.Len()+extra)
	out = reflect.AppendSlice(out, currVal)

	if newVal.Kind() == reflect.Slice {
		if !newVal.Type().Elem().AssignableTo(elem) {
			return nil, fmt.Errorf("cannot append %s to %s", newVal.Type(), currVal.Type())
		}
		return reflect.AppendSlice(out, newVal).Interface(), nil
	}
	if !newVal.Type().AssignableTo(elem) {
		return nil, fmt.Errorf("cannot append %T to %s", new, currVal.Type())
	}
	return reflect.Append(out, newVal).Interface(), nil
}
