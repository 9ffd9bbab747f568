// Package engine recomputes every derived point of a construction from its
// fixed points and the current free point.
//
// A construction is an ordered list of rules. Each rule adds one point and
// may only read points that were resolved before it, so declaration order
// is a topological order of the dependency graph and cycles cannot be
// expressed.
package engine

import (
	"fmt"

	"github.com/dragpoint/geodrag/internal/geom"
)

// FreePoint is the single user-draggable point.
type FreePoint struct {
	ID  string
	Pos geom.Vec
}

// Derive resolves all points for one free point position. The result holds
// the fixed points, the free point and one entry per rule. On failure no
// partial result is returned.
func Derive(fixed map[string]geom.Vec, free FreePoint, rules []Rule) (Points, error) {
	if !geom.IsFinite(free.Pos) {
		return nil, &RuleError{Index: -1, Output: free.ID, Err: &geom.DegenerateVectorError{Op: "non-finite position"}}
	}

	pts := make(Points, len(fixed)+1+len(rules))
	for id, p := range fixed {
		pts[id] = p
	}
	pts[free.ID] = free.Pos

	for i, r := range rules {
		for _, in := range r.Inputs() {
			if _, ok := pts[in]; !ok {
				return nil, &ConfigError{Rule: r.Output(), Reason: fmt.Sprintf("input %q not resolved", in)}
			}
		}
		p, err := r.Apply(pts)
		if err != nil {
			return nil, &RuleError{Index: i, Output: r.Output(), Kind: r.Kind(), Err: err}
		}
		if !geom.IsFinite(p) {
			return nil, &RuleError{Index: i, Output: r.Output(), Kind: r.Kind(), Err: &geom.DegenerateVectorError{Op: "non-finite result"}}
		}
		pts[r.Output()] = p
	}
	return pts, nil
}

// Validate checks a construction before first use: ids are unique and
// non-empty, and every rule input is resolved by an earlier point.
func Validate(fixed []string, free string, rules []Rule) error {
	known := make(map[string]bool, len(fixed)+1+len(rules))
	declare := func(rule, id string) error {
		if id == "" {
			return &ConfigError{Rule: rule, Reason: "empty point id"}
		}
		if known[id] {
			return &ConfigError{Rule: rule, Reason: fmt.Sprintf("duplicate point id %q", id)}
		}
		known[id] = true
		return nil
	}

	for _, id := range fixed {
		if err := declare("", id); err != nil {
			return err
		}
	}
	if err := declare("", free); err != nil {
		return err
	}
	for i, r := range rules {
		name := r.Output()
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		for _, in := range r.Inputs() {
			if !known[in] {
				return &ConfigError{Rule: name, Reason: fmt.Sprintf("input %q is not resolved before this rule", in)}
			}
		}
		if ar, ok := r.(AngleRay); ok && ar.Select.Name != "" {
			if _, err := LookupSelector(ar.Select.Name); err != nil {
				return &ConfigError{Rule: name, Reason: err.Error()}
			}
		}
		if err := declare(name, r.Output()); err != nil {
			return err
		}
	}
	return nil
}
