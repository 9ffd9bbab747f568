// Package library stores construction definitions: the compiled-in
// built-ins, a directory of YAML/JSON files that reloads on change, and a
// PostgreSQL table. A Service layers validation on top and a Handler
// exposes it over HTTP.
package library

import (
	"context"
	"errors"
	"sort"

	"github.com/dragpoint/geodrag/internal/construction"
)

var (
	ErrNotFound = errors.New("construction not found")
	ErrExists   = errors.New("construction already exists")
	ErrReadOnly = errors.New("construction library is read-only")
)

// Summary is the listing entry for one construction.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// Store reads definitions. Get returns ErrNotFound for unknown ids.
type Store interface {
	List(ctx context.Context) ([]Summary, error)
	Get(ctx context.Context, id string) (*construction.Definition, error)
}

// Writer persists definitions, replacing any with the same id.
type Writer interface {
	Put(ctx context.Context, def *construction.Definition) error
}

func summarize(def *construction.Definition, source string) Summary {
	return Summary{ID: def.ID, Name: def.Name, Description: def.Description, Source: source}
}

// Builtin serves the compiled-in constructions.
type Builtin struct{}

func (Builtin) List(context.Context) ([]Summary, error) {
	defs := construction.Builtins()
	out := make([]Summary, len(defs))
	for i, d := range defs {
		out[i] = summarize(d, "builtin")
	}
	return out, nil
}

func (Builtin) Get(_ context.Context, id string) (*construction.Definition, error) {
	def, ok := construction.Builtin(id)
	if !ok {
		return nil, ErrNotFound
	}
	return def, nil
}

// Chain consults stores in order. The first store holding an id shadows
// the rest.
type Chain []Store

func (c Chain) List(ctx context.Context) ([]Summary, error) {
	seen := make(map[string]bool)
	var out []Summary
	for _, s := range c {
		items, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c Chain) Get(ctx context.Context, id string) (*construction.Definition, error) {
	for _, s := range c {
		def, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return def, err
	}
	return nil, ErrNotFound
}
