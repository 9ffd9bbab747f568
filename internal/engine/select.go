package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dragpoint/geodrag/internal/geom"
)

// Predicate accepts or rejects a candidate point.
type Predicate func(p geom.Vec) bool

// Selector picks one of several candidate points. Candidates are tried in
// order; the first one the predicate accepts wins. When none is accepted
// the last candidate is used. The zero Selector takes the first candidate.
type Selector struct {
	Name string
	pred Predicate
}

var (
	selectorsMu sync.RWMutex
	selectors   = map[string]Predicate{
		"negativeX": func(p geom.Vec) bool { return p.X < 0 },
		"positiveX": func(p geom.Vec) bool { return p.X > 0 },
		"negativeY": func(p geom.Vec) bool { return p.Y < 0 },
		"positiveY": func(p geom.Vec) bool { return p.Y > 0 },
	}
)

// RegisterSelector adds a named predicate. Registering an existing name
// replaces it.
func RegisterSelector(name string, pred Predicate) {
	selectorsMu.Lock()
	defer selectorsMu.Unlock()
	selectors[name] = pred
}

// LookupSelector returns the named selector. The empty name gives the zero
// Selector.
func LookupSelector(name string) (Selector, error) {
	if name == "" {
		return Selector{}, nil
	}
	selectorsMu.RLock()
	defer selectorsMu.RUnlock()
	pred, ok := selectors[name]
	if !ok {
		return Selector{}, fmt.Errorf("unknown selector %q", name)
	}
	return Selector{Name: name, pred: pred}, nil
}

// SelectorNames lists registered selector names in sorted order.
func SelectorNames() []string {
	selectorsMu.RLock()
	defer selectorsMu.RUnlock()
	names := make([]string, 0, len(selectors))
	for name := range selectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Choose picks from candidates, which must be non-empty.
func (s Selector) Choose(candidates []geom.Vec) geom.Vec {
	if s.pred == nil {
		return candidates[0]
	}
	for _, c := range candidates {
		if s.pred(c) {
			return c
		}
	}
	return candidates[len(candidates)-1]
}
