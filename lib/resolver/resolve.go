// Package resolver merges a board override layer with the shared baseline
// layer and validates the result against dependency constraints.
//
// Precedence is decided by layer, not by declaration order: an option set in
// the override always wins over the baseline, and every baseline option is
// present in the result. Resolution never modifies its inputs, so one
// baseline can serve any number of boards resolved in parallel.
package resolver

import (
	"errors"

	"github.com/go-i2p/boardcfg/lib/constraint"
	"github.com/go-i2p/boardcfg/lib/option"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Resolve merges override over baseline and checks constraints on the result.
//
// On failure no configuration is returned. The error joins one *Error per
// problem found, so callers can report every offending option at once.
func Resolve(override, baseline option.Layer, constraints constraint.Set, opts ...Option) (*Resolved, error) {
	s := settings{policy: PolicyNamespaced}
	for _, o := range opts {
		o(&s)
	}

	log.WithFields(logger.Fields{
		"at":        "resolver.Resolve",
		"override":  override.Name(),
		"baseline":  baseline.Name(),
		"overrides": override.Len(),
		"policy":    s.policy.String(),
	}).Debug("resolving configuration")

	if baseline.Len() == 0 {
		log.WithFields(logger.Fields{
			"at":       "resolver.Resolve",
			"reason":   "empty_baseline",
			"baseline": baseline.Name(),
		}).Error("baseline layer has no options")
		return nil, &Error{Kind: ErrEmptyBaseline, Detail: "baseline layer " + baseline.Name() + " declares no options"}
	}

	if errs := checkOverride(override, baseline, s.policy); len(errs) > 0 {
		return nil, fail(override, errs)
	}

	r := merge(override, baseline)

	var errs []error
	for _, err := range constraints.Check(r) {
		if errors.Is(err, constraint.ErrInvalidConstraint) {
			errs = append(errs, err)
			continue
		}
		e := &Error{Kind: ErrUnsatisfiedDependency, Detail: err.Error(), Err: err}
		var v *constraint.Violation
		if errors.As(err, &v) {
			e.Option = v.Option
			e.Detail = v.Detail
		}
		errs = append(errs, e)
	}
	if len(errs) > 0 {
		return nil, fail(override, errs)
	}

	log.WithFields(logger.Fields{
		"at":      "resolver.Resolve",
		"reason":  "resolved",
		"options": r.Len(),
		"digest":  r.DigestHex(),
	}).Debug("configuration resolved")
	return r, nil
}

// checkOverride applies the unknown-option policy and the type check to
// every override entry.
func checkOverride(override, baseline option.Layer, policy Policy) []error {
	namespaces := baseline.Namespaces()
	var errs []error
	for _, name := range override.Names() {
		ov, _ := override.Value(name)
		bv, known := baseline.Value(name)
		switch {
		case known && ov.Kind() != bv.Kind():
			errs = append(errs, newError(ErrConflictingType, name,
				"override sets %s %s, baseline declares %s", ov.Kind(), ov, bv.Kind()))
		case known:
		case policy == PolicyStrict:
			errs = append(errs, newError(ErrUnknownOption, name,
				"not declared by baseline %s", baseline.Name()))
		default:
			ns := option.Namespace(name)
			if _, ok := namespaces[ns]; !ok {
				errs = append(errs, newError(ErrUnknownOption, name,
					"namespace %q is not declared by baseline %s", ns, baseline.Name()))
			}
		}
	}
	return errs
}

func merge(override, baseline option.Layer) *Resolved {
	merged := make(map[string]option.Option, baseline.Len()+override.Len())
	for _, o := range baseline.Options() {
		o.Source = option.SourceBaseline
		merged[o.Name] = o
	}
	for _, o := range override.Options() {
		o.Source = option.SourceOverride
		merged[o.Name] = o
	}
	return newResolved(merged)
}

func fail(override option.Layer, errs []error) error {
	for _, err := range errs {
		log.WithFields(logger.Fields{
			"at":       "resolver.Resolve",
			"reason":   "resolution_failed",
			"override": override.Name(),
		}).WithError(err).Error("configuration rejected")
	}
	return errors.Join(errs...)
}
