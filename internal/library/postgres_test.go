package library

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/dragpoint/geodrag/internal/construction"
	"github.com/dragpoint/geodrag/internal/db"
	"github.com/dragpoint/geodrag/internal/typeid"
)

// Runs against a real server when GEODRAG_TEST_DATABASE_URL is set.
func TestPGStore(t *testing.T) {
	url := os.Getenv("GEODRAG_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("GEODRAG_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, url)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	s := NewPGStore(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	def, _ := construction.Builtin("angle-rotation")
	def.ID = typeid.NewConstructionID()
	if err := s.Put(ctx, def); err != nil {
		t.Fatalf("Put: %v", err)
	}
	defer s.Delete(ctx, def.ID)

	got, err := s.Get(ctx, def.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := construction.Compile(got); err != nil {
		t.Errorf("stored definition no longer compiles: %v", err)
	}

	def.Name = "renamed"
	if err := s.Put(ctx, def); err != nil {
		t.Fatalf("Put update: %v", err)
	}
	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, it := range items {
		if it.ID == def.ID {
			found = it.Name == "renamed" && it.Source == "postgres"
		}
	}
	if !found {
		t.Errorf("List missing updated %s", def.ID)
	}

	if err := s.Delete(ctx, def.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, def.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
}
