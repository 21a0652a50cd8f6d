package board

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"slices"
	"strconv"

	"github.com/go-i2p/boardcfg/lib/constraint"
	"github.com/go-i2p/boardcfg/lib/header"
	"github.com/go-i2p/boardcfg/lib/option"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// SymbolTag marks a YAML scalar as a symbol value, e.g. `!sym size_t`.
const SymbolTag = "!sym"

var (
	ErrDuplicateOption = errors.New("duplicate option")
	ErrInvalidValue    = errors.New("invalid option value")
)

// baselineDoc is the schema of a baseline file.
type baselineDoc struct {
	Options yaml.Node         `yaml:"options"`
	Symbols map[string]string `yaml:"symbols"`
}

// boardDoc is the schema of boards/<ID>/board.yaml.
type boardDoc struct {
	Name     string    `yaml:"name"`
	MCU      string    `yaml:"mcu"`
	Baseline string    `yaml:"baseline"`
	Options  yaml.Node `yaml:"options"`
}

type groupDoc struct {
	If string   `yaml:"if"`
	Of []string `yaml:"of"`
}

type ruleDoc struct {
	Requires *struct {
		If   string `yaml:"if"`
		Then string `yaml:"then"`
	} `yaml:"requires"`
	ExactlyOne *groupDoc `yaml:"exactly_one"`
	AtLeastOne *groupDoc `yaml:"at_least_one"`
}

type constraintsDoc struct {
	Constraints []ruleDoc `yaml:"constraints"`
}

// decodeStrict decodes data into out, rejecting unknown fields. An empty
// document returns io.EOF and leaves out untouched.
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func readFile(fsys fs.FS, path string, out any) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return oops.In("board").With("file", path).Wrapf(err, "read %s", path)
	}
	if err := decodeStrict(data, out); err != nil && !errors.Is(err, io.EOF) {
		return oops.In("board").With("file", path).Wrapf(err, "parse %s", path)
	}
	return nil
}

// loadBaseline reads a baseline file into a layer and its symbol table.
func loadBaseline(fsys fs.FS, path string) (option.Layer, map[string]string, error) {
	var doc baselineDoc
	if err := readFile(fsys, path, &doc); err != nil {
		return option.Layer{}, nil, err
	}
	values, err := decodeOptions(&doc.Options)
	if err != nil {
		return option.Layer{}, nil, oops.In("board").With("file", path).Wrapf(err, "options of %s", path)
	}
	owners := make(map[string]string, len(doc.Symbols))
	for _, name := range slices.Sorted(maps.Keys(doc.Symbols)) {
		macro := doc.Symbols[name]
		if err := option.ValidateName(name); err != nil {
			return option.Layer{}, nil, oops.In("board").With("file", path).Wrapf(err, "symbols of %s", path)
		}
		if err := header.ValidateMacro(macro); err != nil {
			return option.Layer{}, nil, oops.In("board").With("file", path).Wrapf(err, "symbol for %s", name)
		}
		if prev, dup := owners[macro]; dup {
			return option.Layer{}, nil, oops.In("board").With("file", path).Wrapf(
				fmt.Errorf("%w: %s is bound to %s and %s", header.ErrMacroCollision, macro, prev, name), "symbols of %s", path)
		}
		owners[macro] = name
	}
	layer, err := option.NewLayer(path, option.SourceBaseline, values)
	if err != nil {
		return option.Layer{}, nil, oops.In("board").With("file", path).Wrapf(err, "baseline %s", path)
	}
	return layer, doc.Symbols, nil
}

// loadConstraints reads the constraint file. A missing file yields an empty set.
func loadConstraints(fsys fs.FS, path string) (constraint.Set, error) {
	var doc constraintsDoc
	if err := readFile(fsys, path, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	set := make(constraint.Set, 0, len(doc.Constraints))
	for i, r := range doc.Constraints {
		c, err := r.build()
		if err != nil {
			return nil, oops.In("board").With("file", path).Wrapf(err, "constraint #%d", i)
		}
		set = append(set, c)
	}
	if err := set.Lint(); err != nil {
		return nil, oops.In("board").With("file", path).Wrapf(err, "lint %s", path)
	}
	return set, nil
}

func (r ruleDoc) build() (constraint.Constraint, error) {
	var out []constraint.Constraint
	if r.Requires != nil {
		out = append(out, constraint.Requires{If: r.Requires.If, Then: r.Requires.Then})
	}
	if r.ExactlyOne != nil {
		out = append(out, constraint.ExactlyOne{If: r.ExactlyOne.If, Of: r.ExactlyOne.Of})
	}
	if r.AtLeastOne != nil {
		out = append(out, constraint.AtLeastOne{If: r.AtLeastOne.If, Of: r.AtLeastOne.Of})
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: each entry needs exactly one of requires, exactly_one, at_least_one", constraint.ErrInvalidConstraint)
	}
	if req, ok := out[0].(constraint.ExactlyOne); ok && req.If == "" {
		return nil, fmt.Errorf("%w: exactly_one needs an if option", constraint.ErrInvalidConstraint)
	}
	return out[0], nil
}

// decodeOptions converts an `options:` mapping node into values. An absent
// node yields an empty mapping.
func decodeOptions(node *yaml.Node) (map[string]option.Value, error) {
	values := make(map[string]option.Value)
	if node.Kind == 0 || node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return values, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: options must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: option names must be scalars", key.Line)
		}
		if _, dup := values[key.Value]; dup {
			return nil, fmt.Errorf("%w: %s (line %d)", ErrDuplicateOption, key.Value, key.Line)
		}
		v, err := decodeValue(val)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", key.Value, err)
		}
		values[key.Value] = v
	}
	return values, nil
}

// decodeValue maps a YAML scalar onto an option value. Plain `enabled` and
// `disabled` are booleans; `!sym` scalars are symbols.
func decodeValue(n *yaml.Node) (option.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return option.Value{}, fmt.Errorf("%w: line %d: expected a scalar", ErrInvalidValue, n.Line)
	}
	switch n.ShortTag() {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return option.Value{}, fmt.Errorf("%w: line %d: %v", ErrInvalidValue, n.Line, err)
		}
		return option.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return option.Value{}, fmt.Errorf("%w: line %d: %v", ErrInvalidValue, n.Line, err)
		}
		return option.Int(i), nil
	case "!!str":
		if n.Style == 0 {
			switch n.Value {
			case "enabled":
				return option.Bool(true), nil
			case "disabled":
				return option.Bool(false), nil
			}
		}
		return option.String(n.Value), nil
	case SymbolTag:
		v, err := option.ParseSymbol(n.Value)
		if err != nil {
			return option.Value{}, fmt.Errorf("%w: line %d: %v", ErrInvalidValue, n.Line, err)
		}
		return v, nil
	default:
		return option.Value{}, fmt.Errorf("%w: line %d: unsupported type %s", ErrInvalidValue, n.Line, n.ShortTag())
	}
}

// EncodeOptions renders options as a mapping node in layer file syntax, so
// the output of a resolution can be pasted back into a board file.
func EncodeOptions(opts []option.Option) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, o := range opts {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: o.Name},
			encodeValue(o.Value))
	}
	return m
}

func encodeValue(v option.Value) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch v.Kind() {
	case option.KindBool:
		// plain enabled/disabled decode back to booleans
		n.Value = "disabled"
		if b, _ := v.AsBool(); b {
			n.Value = "enabled"
		}
	case option.KindInt:
		i, _ := v.AsInt()
		n.Tag = "!!int"
		n.Value = strconv.FormatInt(i, 10)
	case option.KindSymbol:
		n.Tag = SymbolTag
		n.Value = v.Text()
	default:
		n.Tag = "!!str"
		n.Style = yaml.DoubleQuotedStyle
		n.Value = v.Text()
	}
	return n
}
