package graphstore

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/pathfinder/internal/graph"
	_ "modernc.org/sqlite"
)

// SQLite stores graphs as JSON documents, one row per place, together with
// their bounding box.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS graphs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			place_name TEXT NOT NULL UNIQUE,
			graph_data TEXT NOT NULL,
			node_count INTEGER NOT NULL,
			edge_count INTEGER NOT NULL,
			min_lon REAL NOT NULL,
			min_lat REAL NOT NULL,
			max_lon REAL NOT NULL,
			max_lat REAL NOT NULL,
			created_at INTEGER NOT NULL
		);

		-- Bounding box lookups
		CREATE INDEX IF NOT EXISTS idx_graphs_bbox ON graphs(min_lon, min_lat, max_lon, max_lat);
	`
	_, err := db.Exec(schema)
	return err
}

const selectInfoFields = `place_name, node_count, edge_count, min_lon, min_lat, max_lon, max_lat, created_at`

// Put stores g under place, replacing any previous graph for that place.
func (s *SQLite) Put(ctx context.Context, place string, g *graph.Graph) (Info, error) {
	var buf bytes.Buffer
	if err := graph.Encode(&buf, graph.FormatJSON, g); err != nil {
		return Info{}, fmt.Errorf("encoding graph: %w", err)
	}

	info := InfoOf(place, g, time.Now().UTC().Truncate(time.Second))
	b := info.Bounds
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO graphs (place_name, graph_data, node_count, edge_count, min_lon, min_lat, max_lon, max_lat, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(place_name) DO UPDATE SET
			graph_data = excluded.graph_data,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			min_lon = excluded.min_lon,
			min_lat = excluded.min_lat,
			max_lon = excluded.max_lon,
			max_lat = excluded.max_lat,
			created_at = excluded.created_at
	`, place, buf.String(), info.NodeCount, info.EdgeCount, b.MinLon, b.MinLat, b.MaxLon, b.MaxLat, info.CreatedAt.Unix())
	if err != nil {
		return Info{}, fmt.Errorf("storing graph %s: %w", place, err)
	}
	return info, nil
}

// Graph implements Source.
func (s *SQLite) Graph(ctx context.Context, place string) (*graph.Graph, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT graph_data FROM graphs WHERE place_name = ?`, place).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: place}
	}
	if err != nil {
		return nil, fmt.Errorf("querying graph %s: %w", place, err)
	}

	g, err := graph.Decode(bytes.NewBufferString(data), graph.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decoding stored graph %s: %w", place, err)
	}
	return g, nil
}

// Info implements Catalog.
func (s *SQLite) Info(ctx context.Context, place string) (Info, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectInfoFields+` FROM graphs WHERE place_name = ?`, place)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, &NotFoundError{ID: place}
	}
	if err != nil {
		return Info{}, fmt.Errorf("querying graph %s: %w", place, err)
	}
	return info, nil
}

// List implements Catalog. Entries are ordered by place name.
func (s *SQLite) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectInfoFields+` FROM graphs ORDER BY place_name`)
	if err != nil {
		return nil, fmt.Errorf("listing graphs: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning graph row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Contains implements Locator.
func (s *SQLite) Contains(ctx context.Context, c graph.Coordinate) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectInfoFields+` FROM graphs
		WHERE min_lon <= ? AND max_lon >= ? AND min_lat <= ? AND max_lat >= ?
		ORDER BY place_name
	`, c.Lon, c.Lon, c.Lat, c.Lat)
	if err != nil {
		return nil, fmt.Errorf("querying graphs by bounds: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning graph row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the graph stored for place.
func (s *SQLite) Delete(ctx context.Context, place string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM graphs WHERE place_name = ?`, place)
	if err != nil {
		return fmt.Errorf("deleting graph %s: %w", place, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{ID: place}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(row scanner) (Info, error) {
	var (
		info    Info
		created int64
	)
	err := row.Scan(&info.ID, &info.NodeCount, &info.EdgeCount,
		&info.Bounds.MinLon, &info.Bounds.MinLat, &info.Bounds.MaxLon, &info.Bounds.MaxLat, &created)
	if err != nil {
		return Info{}, err
	}
	info.CreatedAt = time.Unix(created, 0).UTC()
	return info, nil
}
