package bus

import (
	"fmt"
	"strings"
)

// DuplicatePolicy decides what happens when two handlers serve the same query type.
type DuplicatePolicy int

const (
	// DuplicateReject fails registry construction with a ConfigurationError.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateOverwrite keeps the handler registered last.
	DuplicateOverwrite
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateReject:
		return "reject"
	case DuplicateOverwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy parses "reject" or "overwrite".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return DuplicateReject, nil
	case "overwrite":
		return DuplicateOverwrite, nil
	default:
		return DuplicateReject, fmt.Errorf("unknown duplicate policy %q", s)
	}
}

type options struct {
	duplicates DuplicatePolicy
}

func defaultOptions() options {
	return options{
		duplicates: DuplicateReject,
	}
}

// Option configures a Builder.
type Option func(*options)

// WithDuplicatePolicy sets how duplicate query types are treated.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(o *options) {
		o.duplicates = p
	}
}
