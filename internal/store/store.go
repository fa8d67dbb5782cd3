// Package store persists a board in sqlite. Store implements
// dnd.Persister and dnd.BatchPersister so a Mutator can write through it.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	dnd "github.com/grindlemire/go-dnd"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when a write targets an item that does not exist.
var ErrNotFound = errors.New("store: item not found")

// Column is a container row.
type Column struct {
	ID    string
	Title string
}

// Store is a sqlite-backed board.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for store operations.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Open migrates the database at path to the latest schema and opens it.
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	if err := Migrate(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// Migrate applies every pending up migration to the database at path.
func Migrate(path string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn in a transaction, rolling back if it fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func now() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.DateTime)
}

func mustAffect(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", what, id, ErrNotFound)
	}
	return nil
}

// MoveItem sets an item's container and order key.
func (s *Store) MoveItem(ctx context.Context, id, containerID string, key float64) error {
	return moveItem(ctx, s.db, id, containerID, key)
}

func moveItem(ctx context.Context, db execer, id, containerID string, key float64) error {
	res, err := db.ExecContext(ctx,
		`UPDATE items SET container_id = ?, order_key = ?, updated_at = ? WHERE id = ?`,
		containerID, key, now(), id)
	if err != nil {
		return fmt.Errorf("move %q: %w", id, err)
	}
	return mustAffect(res, "move", id)
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return deleteItem(ctx, s.db, id)
}

func deleteItem(ctx context.Context, db execer, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	return mustAffect(res, "delete", id)
}

// RestoreItem re-inserts a deleted item. A string Payload is stored as the
// item's title.
func (s *Store) RestoreItem(ctx context.Context, item dnd.Item) error {
	return insertItem(ctx, s.db, item)
}

func insertItem(ctx context.Context, db execer, item dnd.Item) error {
	title, _ := item.Payload.(string)
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, container_id, order_key, title, updated_at) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.ContainerID, item.OrderKey, title, now())
	if err != nil {
		return fmt.Errorf("insert %q: %w", item.ID, err)
	}
	return nil
}

// ApplyBatch applies ops in one transaction. If any op fails none of them
// are kept.
func (s *Store) ApplyBatch(ctx context.Context, ops []dnd.Op) error {
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		for _, op := range ops {
			if err := applyOp(ctx, tx, op); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn("batch rolled back", zap.Int("ops", len(ops)), zap.Error(err))
		return err
	}
	s.log.Debug("batch committed", zap.Int("ops", len(ops)))
	return nil
}

func applyOp(ctx context.Context, db execer, op dnd.Op) error {
	switch op.Kind {
	case dnd.OpMove:
		return moveItem(ctx, db, op.Item.ID, op.Item.ContainerID, op.Item.OrderKey)
	case dnd.OpDelete:
		return deleteItem(ctx, db, op.Item.ID)
	case dnd.OpRestore:
		return insertItem(ctx, db, op.Item)
	default:
		return fmt.Errorf("unknown op kind %s", op.Kind)
	}
}

// Columns returns the containers in display order.
func (s *Store) Columns(ctx context.Context) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title FROM containers ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// LoadBoard reads every container and item into a new board. Item titles
// are loaded as the Payload.
func (s *Store) LoadBoard(ctx context.Context) (*dnd.Board, error) {
	cols, err := s.Columns(ctx)
	if err != nil {
		return nil, err
	}
	b := dnd.NewBoard()
	for _, c := range cols {
		b.AddContainer(c.ID)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, container_id, order_key, title FROM items`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item  dnd.Item
			title string
		)
		if err := rows.Scan(&item.ID, &item.ContainerID, &item.OrderKey, &title); err != nil {
			return nil, err
		}
		item.Payload = title
		if err := b.Put(item); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.log.Debug("board loaded", zap.Int("containers", len(cols)), zap.Int("items", b.Len()))
	return b, nil
}

// Seed inserts containers and items in one transaction. Existing
// containers are kept; items with existing ids fail the whole seed.
func (s *Store) Seed(ctx context.Context, cols []Column, items []dnd.Item) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		for i, c := range cols {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO containers (id, title, position) VALUES (?, ?, ?)`,
				c.ID, c.Title, i); err != nil {
				return fmt.Errorf("seed container %q: %w", c.ID, err)
			}
		}
		for _, item := range items {
			if err := insertItem(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
}
