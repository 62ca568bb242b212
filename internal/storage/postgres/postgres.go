// Package postgres implements a Postgres storage backend using pgx v5.
// CopyFrom maps directly onto the COPY protocol via pgxpool.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tabetl/internal/storage"
)

// Kind is the registry key for this backend.
const Kind = "postgres"

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return Open(ctx, cfg)
	})
	storage.RegisterDDL(Kind, func(def storage.TableDef) (string, error) {
		return storage.CreateSQL(def, storage.Dialect{
			QuoteIdent: storage.QuoteDouble,
			IntType:    "BIGINT",
		})
	})
}

// Repository is a Postgres-backed storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  storage.Config
}

// Open constructs a connection pool from the DSN. The pool connects lazily;
// an unreachable server surfaces on first use.
func Open(ctx context.Context, cfg storage.Config) (*Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, nil
}

// CopyFrom streams rows into the configured table with the COPY protocol.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	return r.pool.CopyFrom(ctx, splitFQN(r.cfg.Table), columns, pgx.CopyFromRows(rows))
}

// Exec runs an arbitrary statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

// Close closes the pool.
func (r *Repository) Close() { r.pool.Close() }

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"};
// an unqualified name becomes {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
