// Package store persists resources in the generic entity-attribute-value
// tables created by internal/database. One ResourceHandler instance serves
// one resource type; every mutation and read runs inside a transaction
// opened through DB so the batch endpoint can hold a single transaction
// across a whole operations document.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mwhitworth/stagehand/internal/atomic"
)

// DB wraps the SQLite handle and opens batch transactions.
type DB struct {
	db *sql.DB
}

// New creates a DB around an open database handle.
func New(db *sql.DB) *DB {
	return &DB{db: db}
}

// Begin opens a transaction. It implements atomic.TransactionFactory.
func (d *DB) Begin(ctx context.Context) (atomic.Transaction, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Tx is the store's transaction. The batch executor drives Commit and
// Rollback; handlers unwrap the inner *sql.Tx to issue statements.
type Tx struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback aborts the transaction.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// sqlTx unwraps the *sql.Tx from a transaction handed back by Begin.
func sqlTx(tx atomic.Transaction) (*sql.Tx, error) {
	st, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("transaction %T was not opened by this store", tx)
	}
	return st.tx, nil
}

// now returns the current UTC time in the timestamp format stored in the
// resources table.
func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
