package repository

import (
	"context"
	"fmt"

	"ev-station-map/internal/geo"
	"ev-station-map/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// maxStationsPerQuery bounds a single bounding box query.
const maxStationsPerQuery = 5000

// Schema creates the station table and its spatial index.
const Schema = `
	CREATE EXTENSION IF NOT EXISTS postgis;

	CREATE TABLE IF NOT EXISTS ev_stations (
		id TEXT PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		address VARCHAR(512) NOT NULL DEFAULT '',
		geom GEOGRAPHY(POINT, 4326) NOT NULL
	);
	CREATE INDEX IF NOT EXISTS ev_stations_geom_idx ON ev_stations USING GIST (geom);
`

// Repository implements station lookups against PostGIS
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the station table when it does not exist yet
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// FindStationsInBounds returns the stations whose position lies inside the bounding box
func (r *Repository) FindStationsInBounds(ctx context.Context, bounds geo.BoundingBox) ([]models.Station, error) {
	sql := `
		SELECT
			id,
			name,
			address,
			ST_Y(geom::geometry) as latitude,
			ST_X(geom::geometry) as longitude
		FROM ev_stations
		WHERE geom::geometry && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		ORDER BY id
		LIMIT $5
	`

	rows, err := r.db.Query(ctx, sql, bounds.MinLon, bounds.MinLat, bounds.MaxLon, bounds.MaxLat, maxStationsPerQuery)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute bounds query: %w", err)
	}
	defer rows.Close()

	stations := []models.Station{}
	for rows.Next() {
		var (
			id, name, address string
			lat, lon          float64
		)
		if err := rows.Scan(&id, &name, &address, &lat, &lon); err != nil {
			return nil, fmt.Errorf("repository: failed to scan station: %w", err)
		}
		stations = append(stations, models.NewStation(id, name, address, lat, lon))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return stations, nil
}
