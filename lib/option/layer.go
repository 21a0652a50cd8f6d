package option

import (
	"fmt"
	"maps"
	"slices"
)

// Source records which layer declared an option.
type Source uint8

const (
	SourceBaseline Source = iota
	SourceOverride
)

func (s Source) String() string {
	if s == SourceOverride {
		return "override"
	}
	return "baseline"
}

// Option is a named value with its provenance.
type Option struct {
	Name   string
	Value  Value
	Source Source
}

func (o Option) String() string {
	return fmt.Sprintf("%s=%s (%s)", o.Name, o.Value, o.Source)
}

// Layer is an immutable mapping from option name to value. The zero Layer is
// an empty baseline layer.
type Layer struct {
	name   string
	source Source
	values map[string]Value
}

// NewLayer validates values and returns a layer holding a private copy of them.
func NewLayer(name string, source Source, values map[string]Value) (Layer, error) {
	for key, v := range values {
		if err := ValidateName(key); err != nil {
			return Layer{}, fmt.Errorf("layer %s: %w", name, err)
		}
		if !v.IsValid() {
			return Layer{}, fmt.Errorf("layer %s: option %s has no value", name, key)
		}
	}
	return Layer{name: name, source: source, values: maps.Clone(values)}, nil
}

// MustLayer is like NewLayer but panics on invalid input.
func MustLayer(name string, source Source, values map[string]Value) Layer {
	l, err := NewLayer(name, source, values)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the layer's name, usually the file it was loaded from.
func (l Layer) Name() string { return l.name }

// Source returns the role of the layer.
func (l Layer) Source() Source { return l.source }

// Len returns the number of options in the layer.
func (l Layer) Len() int { return len(l.values) }

// Value returns the value declared for name.
func (l Layer) Value(name string) (Value, bool) {
	v, ok := l.values[name]
	return v, ok
}

// Has reports whether the layer declares name.
func (l Layer) Has(name string) bool {
	_, ok := l.values[name]
	return ok
}

// Get returns the option declared for name with this layer as its source.
func (l Layer) Get(name string) (Option, bool) {
	v, ok := l.values[name]
	if !ok {
		return Option{}, false
	}
	return Option{Name: name, Value: v, Source: l.source}, true
}

// Names returns the declared option names in sorted order.
func (l Layer) Names() []string {
	return slices.Sorted(maps.Keys(l.values))
}

// Namespaces returns the set of namespaces used by the layer.
func (l Layer) Namespaces() map[string]struct{} {
	ns := make(map[string]struct{})
	for key := range l.values {
		ns[Namespace(key)] = struct{}{}
	}
	return ns
}

// Values returns a copy of the layer's mapping.
func (l Layer) Values() map[string]Value {
	return maps.Clone(l.values)
}

// Options returns the layer's options sorted by name.
func (l Layer) Options() []Option {
	names := l.Names()
	out := make([]Option, 0, len(names))
	for _, n := range names {
		out = append(out, Option{Name: n, Value: l.values[n], Source: l.source})
	}
	return out
}
