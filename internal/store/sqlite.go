package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
// Each user is one JSON document row; global reset keys live in meta.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Load reads every user document and the meta keys.
func (r *SQLiteRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	rows, err := r.db.QueryContext(ctx, `SELECT user_id, doc FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int64
			doc string
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		u, err := decodeUser(id, doc)
		if err != nil {
			return nil, err
		}
		snap.Users[id] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metaRows, err := r.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, err
	}
	defer metaRows.Close()

	for metaRows.Next() {
		var key, value string
		if err := metaRows.Scan(&key, &value); err != nil {
			return nil, err
		}
		applyMeta(&snap.Meta, key, value)
	}
	return snap, metaRows.Err()
}

// Save replaces the stored state with s inside one transaction.
func (r *SQLiteRepo) Save(ctx context.Context, s *domain.Snapshot) error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	now := time.Now().UTC().Unix()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO users (user_id, doc, updated_at) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range s.UserIDs() {
		doc, err := encodeUser(s.Users[id])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, id, doc, now); err != nil {
			return err
		}
	}

	for key, value := range metaPairs(s.Meta) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}
