package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dragpoint/geodrag/internal/construction"
	"github.com/dragpoint/geodrag/internal/typeid"
)

// Deleter removes definitions.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// InvalidError reports a definition that does not compile.
type InvalidError struct {
	Err error
}

func (e *InvalidError) Error() string { return "invalid construction: " + e.Err.Error() }
func (e *InvalidError) Unwrap() error { return e.Err }

// Service validates definitions on the way in and resolves them on the way
// out. A nil writer makes the library read-only.
type Service struct {
	store  Store
	writer Writer
	log    *slog.Logger
}

func NewService(store Store, writer Writer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, writer: writer, log: log}
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Summary{}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*construction.Definition, error) {
	return s.store.Get(ctx, id)
}

// Compile fetches and compiles a definition.
func (s *Service) Compile(ctx context.Context, id string) (*construction.Compiled, error) {
	def, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := construction.Compile(def)
	if err != nil {
		return nil, &InvalidError{Err: err}
	}
	return c, nil
}

// Create stores a new definition, assigning an id when it has none.
func (s *Service) Create(ctx context.Context, def *construction.Definition) (*Summary, error) {
	if s.writer == nil {
		return nil, ErrReadOnly
	}
	if def.ID == "" {
		def.ID = typeid.NewConstructionID()
	}
	if _, err := s.store.Get(ctx, def.ID); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := construction.Compile(def); err != nil {
		return nil, &InvalidError{Err: err}
	}
	if err := s.writer.Put(ctx, def); err != nil {
		return nil, fmt.Errorf("create construction: %w", err)
	}
	s.log.Info("construction created", "id", def.ID, "name", def.Name)
	sum := summarize(def, "user")
	return &sum, nil
}

// Delete removes a stored definition. Built-ins cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	d, ok := s.writer.(Deleter)
	if !ok {
		return ErrReadOnly
	}
	if err := d.Delete(ctx, id); err != nil {
		if _, builtin := construction.Builtin(id); builtin && errors.Is(err, ErrNotFound) {
			return ErrReadOnly
		}
		return err
	}
	s.log.Info("construction deleted", "id", id)
	return nil
}
