// Package tradestore persists users, transactions and their ledgers in a
// single sqlite database. All state-transitioning writes run inside a sql
// transaction with a status-guarded update, so a lost race surfaces as
// model.ErrorConflict instead of a double commit.
package tradestore

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/pixeltrade/pixeltrade/internal/tradestore/migrations"
)

type Store struct {
	db *sqlx.DB
}

func Open(databaseFile string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", "file:"+databaseFile+"?_fk=1&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db.DB, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
