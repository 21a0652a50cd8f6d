// Package constraint declares dependency rules between build options.
//
// Constraints are written once, independently of any board, and checked
// against every resolved configuration. An option that a view does not
// contain counts as disabled.
package constraint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-i2p/boardcfg/lib/option"
)

// ErrInvalidConstraint is returned by Lint for malformed rules.
var ErrInvalidConstraint = errors.New("invalid constraint")

// View is read access to a set of option values.
type View interface {
	Value(name string) (option.Value, bool)
}

// Constraint is a rule over a View.
type Constraint interface {
	// Check returns a *Violation if the rule does not hold.
	Check(v View) error
	// Options returns every option name the rule mentions.
	Options() []string
	String() string
}

// Violation describes a failed rule.
type Violation struct {
	Rule   Constraint
	Option string
	Detail string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
}

func enabled(v View, name string) bool {
	val, ok := v.Value(name)
	return ok && val.Enabled()
}

// Requires holds when If is disabled or Then is enabled.
type Requires struct {
	If   string
	Then string
}

func (r Requires) Check(v View) error {
	if !enabled(v, r.If) || enabled(v, r.Then) {
		return nil
	}
	return &Violation{Rule: r, Option: r.Then, Detail: fmt.Sprintf("%s is enabled but %s is not set", r.If, r.Then)}
}

func (r Requires) Options() []string { return []string{r.If, r.Then} }

func (r Requires) String() string { return r.If + " requires " + r.Then }

// ExactlyOne holds when If is disabled or exactly one option of Of is enabled.
type ExactlyOne struct {
	If string
	Of []string
}

func (e ExactlyOne) Check(v View) error {
	if !enabled(v, e.If) {
		return nil
	}
	on := enabledOf(v, e.Of)
	switch len(on) {
	case 1:
		return nil
	case 0:
		return &Violation{Rule: e, Option: e.If, Detail: fmt.Sprintf("%s is enabled but none of [%s] is", e.If, strings.Join(e.Of, ", "))}
	default:
		return &Violation{Rule: e, Option: e.If, Detail: fmt.Sprintf("%s allows one of [%s], found %s", e.If, strings.Join(e.Of, ", "), strings.Join(on, ", "))}
	}
}

func (e ExactlyOne) Options() []string { return append([]string{e.If}, e.Of...) }

func (e ExactlyOne) String() string {
	return e.If + " requires exactly one of [" + strings.Join(e.Of, ", ") + "]"
}

// AtLeastOne holds when If is disabled or any option of Of is enabled.
// An empty If makes the rule unconditional.
type AtLeastOne struct {
	If string
	Of []string
}

func (a AtLeastOne) Check(v View) error {
	if a.If != "" && !enabled(v, a.If) {
		return nil
	}
	if len(enabledOf(v, a.Of)) > 0 {
		return nil
	}
	subject := a.If
	if subject == "" {
		subject = "configuration"
	}
	return &Violation{Rule: a, Option: subject, Detail: fmt.Sprintf("%s needs at least one of [%s]", subject, strings.Join(a.Of, ", "))}
}

func (a AtLeastOne) Options() []string {
	if a.If == "" {
		return append([]string(nil), a.Of...)
	}
	return append([]string{a.If}, a.Of...)
}

func (a AtLeastOne) String() string {
	prefix := "always"
	if a.If != "" {
		prefix = a.If
	}
	return prefix + " requires one of [" + strings.Join(a.Of, ", ") + "]"
}

func enabledOf(v View, names []string) []string {
	var on []string
	for _, n := range names {
		if enabled(v, n) {
			on = append(on, n)
		}
	}
	return on
}
