package storage

import "github.com/jackc/pgx/v5/pgxpool"

// GetPool lets tests seed the catalog directly.
func (pgr *PostgresRepo) GetPool() *pgxpool.Pool {
	return pgr.pool
}
