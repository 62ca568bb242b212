// Package storage defines the database sink abstraction for the load stage.
//
// The pipeline depends only on the Repository interface and the kind-keyed
// factory here; concrete drivers (sqlite, postgres, mssql, mysql) live in
// subpackages and register themselves at init time. Importing
// internal/storage/all wires every backend into a binary.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config holds the backend-independent parts of a sink configuration.
type Config struct {
	// DSN is the backend connection string.
	DSN string
	// Table is the destination table name, optionally schema-qualified.
	Table string
}

// Repository is the minimal surface a database backend must provide.
type Repository interface {
	// CopyFrom bulk-inserts rows into the configured table. Every row must
	// have len(columns) values; nil values become SQL NULL. It returns the
	// number of rows inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs an arbitrary statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connection resources.
	Close()
}

// OpenFunc opens a Repository for one backend kind.
type OpenFunc func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu   sync.RWMutex
	openFns = map[string]OpenFunc{}
	ddlFns  = map[string]CreateTableFunc{}
)

// Register installs (or replaces) the opener for a storage kind. Backend
// packages call it from init().
func Register(kind string, fn OpenFunc) {
	regMu.Lock()
	defer regMu.Unlock()
	openFns[kind] = fn
}

// New opens a Repository of the given kind. Unknown kinds are an error; the
// caller must have imported the matching backend package (see storage/all).
func New(ctx context.Context, kind string, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := openFns[kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: no backend registered for kind %q", kind)
	}
	return fn(ctx, cfg)
}

// CreateTableFunc renders a dialect-specific CREATE TABLE statement for a
// table definition.
type CreateTableFunc func(def TableDef) (string, error)

// RegisterDDL installs the CREATE TABLE builder for a storage kind.
func RegisterDDL(kind string, fn CreateTableFunc) {
	regMu.Lock()
	defer regMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable builds the kind's CREATE TABLE statement for def and applies
// it through repo.Exec. Statements are IF NOT EXISTS, so re-running a
// pipeline against an existing table is harmless.
func EnsureTable(ctx context.Context, repo Repository, kind string, def TableDef) error {
	regMu.RLock()
	fn, ok := ddlFns[kind]
	regMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no DDL builder registered for kind %q", kind)
	}
	sql, err := fn(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
