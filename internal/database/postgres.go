// Package database persists located parking spaces in Postgres.
package database

import (
	"context"
	"fmt"
	"log"

	"parking/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS parking_spaces (
	space_id   TEXT PRIMARY KEY,
	latitude   DOUBLE PRECISION NOT NULL,
	longitude  DOUBLE PRECISION NOT NULL,
	rate_range TEXT,
	time_limit TEXT,
	price      DOUBLE PRECISION,
	source_key TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertSQL = `INSERT INTO parking_spaces (space_id, latitude, longitude, rate_range, time_limit, price, source_key, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (space_id) DO UPDATE SET
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	rate_range = EXCLUDED.rate_range,
	time_limit = EXCLUDED.time_limit,
	price = EXCLUDED.price,
	source_key = EXCLUDED.source_key,
	updated_at = EXCLUDED.updated_at`

// DB is the subset of *pgxpool.Pool used by SpaceStore.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Connect opens a connection pool and checks it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

type SpaceStore struct {
	db DB
}

func NewSpaceStore(db DB) *SpaceStore {
	return &SpaceStore{db: db}
}

// EnsureSchema creates the parking_spaces table if it is missing.
func (s *SpaceStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("SpaceStore.EnsureSchema: %w", err)
	}
	return nil
}

// Upsert writes spaces in one batch, tagging each row with the object key of
// the document it came from.
func (s *SpaceStore) Upsert(ctx context.Context, sourceKey string, spaces []models.LocatedSpace) error {
	if len(spaces) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, sp := range spaces {
		batch.Queue(upsertSQL,
			sp.ID, sp.Coordinates.Lat, sp.Coordinates.Lon,
			sp.RateRange, sp.TimeLimit, sp.Price, sourceKey,
		)
	}

	br := s.db.SendBatch(ctx, batch)
	for i := range spaces {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("SpaceStore.Upsert: space %q: %w", spaces[i].ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("SpaceStore.Upsert: %w", err)
	}

	log.Printf("Upserted %d spaces from '%s'", len(spaces), sourceKey)
	return nil
}
