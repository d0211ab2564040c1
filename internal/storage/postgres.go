package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/porodog/doodle-server/internal/game"
)

var ErrUnexpectedDatabase = errors.New("unexpected-database-error")

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrap(err)
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

// LoadWordTable reads the whole catalog. Rows are returned as stored; callers
// merge them into the built-in tables, which normalizes and drops unknown categories.
func (pgr *PostgresRepo) LoadWordTable(ctx context.Context) (game.WordTable, error) {
	rows, err := pgr.pool.Query(ctx, "SELECT category, word FROM words ORDER BY category, word")
	if err != nil {
		return nil, wrap(err)
	}

	table := game.WordTable{}
	var category, word string
	_, err = pgx.ForEachRow(rows, []any{&category, &word}, func() error {
		c := game.Category(category)
		table[c] = append(table[c], word)
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}
	return table, nil
}

func wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
}
