package resolver

import (
	"fmt"
	"strings"
)

// Policy decides what happens to override options the baseline does not declare.
type Policy uint8

const (
	// PolicyNamespaced accepts an undeclared override option when its
	// namespace is already used by the baseline. Options in unknown
	// namespaces are rejected with ErrUnknownOption.
	PolicyNamespaced Policy = iota

	// PolicyStrict rejects every override option the baseline does not declare.
	PolicyStrict
)

func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	default:
		return "namespaced"
	}
}

// ParsePolicy converts a policy name as used in configuration files.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "namespaced":
		return PolicyNamespaced, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return 0, fmt.Errorf("unknown resolution policy %q", s)
	}
}

// Option configures a resolution run.
type Option func(*settings)

type settings struct {
	policy Policy
}

// WithPolicy selects the unknown-option policy. The default is PolicyNamespaced.
func WithPolicy(p Policy) Option {
	return func(s *settings) { s.policy = p }
}
