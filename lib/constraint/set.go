package constraint

import (
	"errors"
	"fmt"

	"github.com/go-i2p/boardcfg/lib/option"
)

// Set is an unordered collection of constraints.
type Set []Constraint

// Check evaluates every rule against v and returns one error per violation.
// The result does not depend on the order of the set. A nil rule is reported
// as ErrInvalidConstraint.
func (s Set) Check(v View) []error {
	var errs []error
	for i, c := range s {
		if c == nil {
			errs = append(errs, fmt.Errorf("%w #%d: nil constraint", ErrInvalidConstraint, i))
			continue
		}
		if err := c.Check(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Lint verifies that every rule is well formed.
func (s Set) Lint() error {
	var errs []error
	for i, c := range s {
		if err := lint(c); err != nil {
			errs = append(errs, fmt.Errorf("%w #%d (%s): %v", ErrInvalidConstraint, i, c, err))
		}
	}
	return errors.Join(errs...)
}

func lint(c Constraint) error {
	switch r := c.(type) {
	case Requires:
		if r.If == r.Then {
			return fmt.Errorf("%s requires itself", r.If)
		}
	case ExactlyOne:
		if len(r.Of) == 0 {
			return errors.New("empty option group")
		}
	case AtLeastOne:
		if len(r.Of) == 0 {
			return errors.New("empty option group")
		}
	case nil:
		return errors.New("nil constraint")
	}
	seen := make(map[string]struct{})
	for _, name := range c.Options() {
		if err := option.ValidateName(name); err != nil {
			return err
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%s listed twice", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
