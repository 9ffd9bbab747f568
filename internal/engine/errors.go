package engine

import "fmt"

// RuleError wraps the failure of one rule during derivation. Index is the
// rule's position in the ordered list, or -1 for the free point itself.
type RuleError struct {
	Index  int
	Output string
	Kind   Kind
	Err    error
}

func (e *RuleError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("free point %s: %v", e.Output, e.Err)
	}
	return fmt.Sprintf("rule %d (%s %s): %v", e.Index, e.Kind, e.Output, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// ConfigError reports a construction whose rules cannot be evaluated in
// order: missing inputs, duplicate outputs or unknown selectors.
type ConfigError struct {
	Rule   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Rule == "" {
		return "invalid construction: " + e.Reason
	}
	return fmt.Sprintf("invalid construction: rule %s: %s", e.Rule, e.Reason)
}
