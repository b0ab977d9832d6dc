package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// MaxPageBatch caps how many pending pages a single FetchPages call returns.
const MaxPageBatch = 100

var schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS comic_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS chapter_seq START 1`,
	`CREATE TABLE IF NOT EXISTS comics (
		path_word VARCHAR PRIMARY KEY,
		name      VARCHAR NOT NULL DEFAULT '',
		cover     VARCHAR NOT NULL DEFAULT '',
		status    INTEGER NOT NULL DEFAULT 0,
		seq       BIGINT DEFAULT nextval('comic_seq')
	)`,
	`CREATE TABLE IF NOT EXISTS chapters (
		uuid            VARCHAR PRIMARY KEY,
		comic_path_word VARCHAR NOT NULL,
		group_path_word VARCHAR NOT NULL DEFAULT '',
		name            VARCHAR NOT NULL DEFAULT '',
		chapter_index   INTEGER NOT NULL DEFAULT 0,
		status          INTEGER NOT NULL DEFAULT 0,
		seq             BIGINT DEFAULT nextval('chapter_seq')
	)`,
	`CREATE TABLE IF NOT EXISTS pages (
		comic_path_word VARCHAR NOT NULL,
		chapter_uuid    VARCHAR NOT NULL,
		image_index     INTEGER NOT NULL,
		url             VARCHAR NOT NULL,
		cache_key       VARCHAR NOT NULL DEFAULT '',
		status          INTEGER NOT NULL DEFAULT 0,
		width           INTEGER NOT NULL DEFAULT 0,
		height          INTEGER NOT NULL DEFAULT 0,
		format          VARCHAR NOT NULL DEFAULT '',
		PRIMARY KEY (chapter_uuid, image_index)
	)`,
}

// InitDuckDB opens the database at path, creating parent directories and the
// backlog schema when missing.
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return db, nil
}

type Repository struct {
	db *sql.DB
}

// OpenRepository opens (or creates) the DuckDB backlog at path.
func OpenRepository(path string) (*Repository, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
