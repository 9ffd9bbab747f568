package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dragpoint/geodrag/internal/construction"
)

const schema = `
CREATE TABLE IF NOT EXISTS constructions (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	definition  JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PGStore keeps definitions as JSONB rows.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the constructions table if it is missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create constructions table: %w", err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description FROM constructions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list constructions: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		sum := Summary{Source: "postgres"}
		err := row.Scan(&sum.ID, &sum.Name, &sum.Description)
		return sum, err
	})
	if err != nil {
		return nil, fmt.Errorf("list constructions: %w", err)
	}
	return items, nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*construction.Definition, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT definition FROM constructions WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get construction: %w", err)
	}
	var def construction.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode construction %s: %w", id, err)
	}
	return &def, nil
}

func (s *PGStore) Put(ctx context.Context, def *construction.Definition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode construction: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO constructions (id, name, description, definition)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    definition = EXCLUDED.definition,
		    updated_at = now()`,
		def.ID, def.Name, def.Description, data)
	if err != nil {
		return fmt.Errorf("store construction: %w", err)
	}
	return nil
}

// Delete removes a definition.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM constructions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete construction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
