package resolver

import (
	"encoding/hex"
	"maps"
	"slices"
	"strconv"

	"github.com/go-i2p/boardcfg/lib/option"
	"golang.org/x/crypto/blake2b"
)

// Resolved is the immutable result of a successful resolution.
type Resolved struct {
	options map[string]option.Option
	names   []string
	digest  [blake2b.Size256]byte
}

func newResolved(options map[string]option.Option) *Resolved {
	r := &Resolved{
		options: options,
		names:   slices.Sorted(maps.Keys(options)),
	}
	r.digest = r.computeDigest()
	return r
}

// computeDigest hashes the canonical encoding: one record per option in name
// order, each record being name, kind and value separated by NUL.
func (r *Resolved) computeDigest() [blake2b.Size256]byte {
	h, _ := blake2b.New256(nil)
	for _, name := range r.names {
		o := r.options[name]
		h.Write([]byte(name))
		h.Write([]byte{0, byte(o.Value.Kind()), 0})
		switch o.Value.Kind() {
		case option.KindInt:
			i, _ := o.Value.AsInt()
			h.Write([]byte(strconv.FormatInt(i, 10)))
		case option.KindBool:
			b, _ := o.Value.AsBool()
			h.Write([]byte(strconv.FormatBool(b)))
		default:
			h.Write([]byte(o.Value.Text()))
		}
		h.Write([]byte{'\n'})
	}
	var sum [blake2b.Size256]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Len returns the number of resolved options.
func (r *Resolved) Len() int { return len(r.names) }

// Names returns the option names in sorted order.
func (r *Resolved) Names() []string { return slices.Clone(r.names) }

// Get returns the resolved option with its provenance.
func (r *Resolved) Get(name string) (option.Option, bool) {
	o, ok := r.options[name]
	return o, ok
}

// Value returns the resolved value of name.
func (r *Resolved) Value(name string) (option.Value, bool) {
	o, ok := r.options[name]
	return o.Value, ok
}

// Enabled reports whether name resolved to an enabled value.
func (r *Resolved) Enabled(name string) bool {
	v, ok := r.Value(name)
	return ok && v.Enabled()
}

// Options returns all resolved options sorted by name.
func (r *Resolved) Options() []option.Option {
	out := make([]option.Option, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.options[n])
	}
	return out
}

// Map returns the resolved values without provenance.
func (r *Resolved) Map() map[string]option.Value {
	out := make(map[string]option.Value, len(r.options))
	for n, o := range r.options {
		out[n] = o.Value
	}
	return out
}

// Overridden returns the names whose value came from the override layer.
func (r *Resolved) Overridden() []string {
	var out []string
	for _, n := range r.names {
		if r.options[n].Source == option.SourceOverride {
			out = append(out, n)
		}
	}
	return out
}

// Equal reports whether r and o resolve every option to the same value.
// Provenance is not compared.
func (r *Resolved) Equal(o *Resolved) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.digest == o.digest && maps.EqualFunc(r.options, o.options, func(a, b option.Option) bool {
		return a.Value.Equal(b.Value)
	})
}

// Digest returns the BLAKE2b-256 digest of the resolved values. It is stable
// across runs and independent of which layer supplied each value.
func (r *Resolved) Digest() [blake2b.Size256]byte { return r.digest }

// DigestHex returns Digest as lowercase hex.
func (r *Resolved) DigestHex() string { return hex.EncodeToString(r.digest[:]) }
