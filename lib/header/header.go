// Package header renders resolved board configurations as C preprocessor
// headers, the form in which the firmware build consumes them.
package header

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-i2p/boardcfg/lib/option"
	"github.com/go-i2p/boardcfg/lib/resolver"
)

const (
	DefaultPrefix      = "MICROPY_"
	DefaultGuardPrefix = "BOARDCFG_"

	// ValuePlaceholder marks a selection macro. The placeholder is replaced by
	// the upper-cased option value and the macro is defined as (1).
	ValuePlaceholder = "{VALUE}"
)

var (
	// ErrInvalidMacro is returned for macro names that are not C identifiers.
	ErrInvalidMacro = errors.New("invalid macro name")

	// ErrSelectionKind is returned when a selection macro is bound to an
	// option that is not a symbol or string.
	ErrSelectionKind = errors.New("selection macro needs a symbol or string option")

	// ErrMacroCollision is returned when two options would define the same macro.
	ErrMacroCollision = errors.New("macro defined by two options")
)

var macroPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options control how options map onto macros.
type Options struct {
	// Symbols maps option names to macro names. Options without an entry get
	// Prefix followed by the upper-cased name with dots replaced.
	Symbols     map[string]string
	Prefix      string
	GuardPrefix string
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.GuardPrefix == "" {
		o.GuardPrefix = DefaultGuardPrefix
	}
	return o
}

// ValidateMacro checks a symbol table entry. Selection macros may contain
// ValuePlaceholder once.
func ValidateMacro(macro string) error {
	plain := strings.Replace(macro, ValuePlaceholder, "X", 1)
	if !macroPattern.MatchString(plain) || strings.HasPrefix(macro, ValuePlaceholder) {
		return fmt.Errorf("%w: %q", ErrInvalidMacro, macro)
	}
	return nil
}

// MacroName returns the macro an option is emitted under.
func MacroName(name string, symbols map[string]string, prefix string) string {
	if m, ok := symbols[name]; ok {
		return m
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + strings.ToUpper(strings.ReplaceAll(name, ".", "_"))
}

// Render writes the header for board to w.
func Render(w io.Writer, board string, r *resolver.Resolved, opts Options) error {
	opts = opts.withDefaults()
	guard := opts.GuardPrefix + sanitize(board) + "_H"

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by boardcfg. DO NOT EDIT.\n")
	fmt.Fprintf(&b, "// board: %s\n", board)
	fmt.Fprintf(&b, "// digest: %s\n\n", r.DigestHex())
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guard, guard)

	owners := make(map[string]string)
	for _, o := range r.Options() {
		macro, line, err := define(o, opts)
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if prev, dup := owners[macro]; dup {
			return fmt.Errorf("%w: %s is set by %s and %s", ErrMacroCollision, macro, prev, o.Name)
		}
		owners[macro] = o.Name
		b.WriteString(line)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\n#endif // %s\n", guard)
	_, err := w.Write(b.Bytes())
	return err
}

// Bytes returns the rendered header.
func Bytes(board string, r *resolver.Resolved, opts Options) ([]byte, error) {
	var b bytes.Buffer
	if err := Render(&b, board, r, opts); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// define returns the macro o is emitted under and its #define line. The
// line is empty for a selection option with no value.
func define(o option.Option, opts Options) (string, string, error) {
	macro := MacroName(o.Name, opts.Symbols, opts.Prefix)

	if strings.Contains(macro, ValuePlaceholder) {
		switch o.Value.Kind() {
		case option.KindSymbol, option.KindString:
		default:
			return "", "", fmt.Errorf("%w: %s is %s", ErrSelectionKind, o.Name, o.Value.Kind())
		}
		if o.Value.Text() == "" {
			return "", "", nil
		}
		selected := strings.Replace(macro, ValuePlaceholder, sanitize(o.Value.Text()), 1)
		return selected, "#define " + selected + " (1)", nil
	}

	var body string
	switch o.Value.Kind() {
	case option.KindBool:
		body = "(0)"
		if o.Value.Enabled() {
			body = "(1)"
		}
	case option.KindInt:
		i, _ := o.Value.AsInt()
		body = "(" + strconv.FormatInt(i, 10) + ")"
	case option.KindString:
		body = cQuote(o.Value.Text())
	case option.KindSymbol:
		body = o.Value.Text()
	default:
		return "", "", fmt.Errorf("option %s has no value", o.Name)
	}
	return macro, "#define " + macro + " " + body, nil
}

// sanitize upper-cases s and replaces every byte outside [A-Z0-9_] with '_'.
func sanitize(s string) string {
	up := []byte(strings.ToUpper(s))
	for i, c := range up {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			up[i] = '_'
		}
	}
	return string(up)
}

// cQuote renders s as a C string literal. Bytes outside printable ASCII are
// written as three-digit octal escapes.
func cQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, "\\%03o", c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
