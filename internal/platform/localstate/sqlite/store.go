// Package sqlite stores state slots in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/Apurer/pet-adoption-api/internal/platform/localstate"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a SQLite-backed localstate.Store.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

type slotRow struct {
	Key       string `db:"slot_key"`
	Value     []byte `db:"slot_value"`
	UpdatedAt int64  `db:"updated_at"`
}

// Open connects to the database at path (":memory:" for a throwaway store) and migrates it.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite state path is empty")
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	// one writer keeps SQLite free of SQLITE_BUSY and pins :memory: to a single database
	db.SetMaxOpenConns(1)

	if err := migrate(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row slotRow
	err := s.db.GetContext(ctx, &row, `SELECT slot_key, slot_value, updated_at FROM state_slots WHERE slot_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return row.Value, true, nil
}

func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	if blob == nil {
		blob = []byte{}
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO state_slots (slot_key, slot_value, updated_at)
		VALUES (:slot_key, :slot_value, :updated_at)
		ON CONFLICT(slot_key) DO UPDATE SET slot_value = excluded.slot_value, updated_at = excluded.updated_at`,
		slotRow{Key: key, Value: blob, UpdatedAt: s.now().UnixMilli()})
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM state_slots WHERE slot_key = ?`, key)
	return err
}

var _ localstate.Store = (*Store)(nil)
