// Package store persists cleaned readings and issued forecasts in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campus-energy/internal/model"

	_ "modernc.org/sqlite"
)

// Store wraps the database connection.
type Store struct {
	conn *sql.DB
}

// New opens (or creates) the database and initializes the schema.
func New(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		building TEXT NOT NULL,
		signal TEXT NOT NULL,
		time TEXT NOT NULL,
		value REAL NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(building, signal, time)
	);
	CREATE INDEX IF NOT EXISTS idx_readings_lookup ON readings(building, signal, time);

	CREATE TABLE IF NOT EXISTS forecasts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		building TEXT NOT NULL,
		signal TEXT NOT NULL,
		model TEXT NOT NULL,
		issued_at TEXT NOT NULL,
		time TEXT NOT NULL,
		value REAL NOT NULL,
		UNIQUE(building, signal, model, issued_at, time)
	);
	CREATE INDEX IF NOT EXISTS idx_forecasts_lookup ON forecasts(building, signal, model, issued_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

const timeLayout = time.RFC3339

// SaveReadings upserts cleaned readings in one transaction.
func (s *Store) SaveReadings(ctx context.Context, building string, signal model.Signal, readings []model.Reading) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO readings (building, signal, time, value, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(building, signal, time) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(timeLayout)
	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx, building, string(signal), r.Time.UTC().Format(timeLayout), r.Value, now); err != nil {
			return fmt.Errorf("inserting reading at %s: %w", r.Time, err)
		}
	}
	return tx.Commit()
}

// Readings returns readings in [from, to) ordered by time.
func (s *Store) Readings(ctx context.Context, building string, signal model.Signal, from, to time.Time) ([]model.Reading, error) {
	rows, err := s.conn.QueryContext(ctx, `
	SELECT time, value FROM readings
	WHERE building = ? AND signal = ? AND time >= ? AND time < ?
	ORDER BY time
	`, building, string(signal), from.UTC().Format(timeLayout), to.UTC().Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reading
	for rows.Next() {
		var ts string
		var v float64
		if err := rows.Scan(&ts, &v); err != nil {
			return nil, err
		}
		t, err := time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("corrupt timestamp %q: %w", ts, err)
		}
		out = append(out, model.Reading{Time: t, Value: v})
	}
	return out, rows.Err()
}

// SaveForecast stores one issued forecast run.
func (s *Store) SaveForecast(ctx context.Context, building string, signal model.Signal, modelName string, issuedAt time.Time, readings []model.Reading) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO forecasts (building, signal, model, issued_at, time, value)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(building, signal, model, issued_at, time) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	issued := issuedAt.UTC().Format(timeLayout)
	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx, building, string(signal), modelName, issued, r.Time.UTC().Format(timeLayout), r.Value); err != nil {
			return fmt.Errorf("inserting forecast at %s: %w", r.Time, err)
		}
	}
	return tx.Commit()
}

// Forecast loads one issued forecast run ordered by time.
func (s *Store) Forecast(ctx context.Context, building string, signal model.Signal, modelName string, issuedAt time.Time) ([]model.Reading, error) {
	rows, err := s.conn.QueryContext(ctx, `
	SELECT time, value FROM forecasts
	WHERE building = ? AND signal = ? AND model = ? AND issued_at = ?
	ORDER BY time
	`, building, string(signal), modelName, issuedAt.UTC().Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reading
	for rows.Next() {
		var ts string
		var v float64
		if err := rows.Scan(&ts, &v); err != nil {
			return nil, err
		}
		t, err := time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("corrupt timestamp %q: %w", ts, err)
		}
		out = append(out, model.Reading{Time: t, Value: v})
	}
	return out, rows.Err()
}

// Buildings lists the distinct building ids with any readings.
func (s *Store) Buildings(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT DISTINCT building FROM readings ORDER BY building`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
