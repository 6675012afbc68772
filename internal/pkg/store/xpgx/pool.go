package xpgx

import (
	"context"
	"fmt"
	"github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ougirez/pricelist/internal/pkg/logger"
	"time"
)

// Pool runs squirrel builders against Postgres and scans results into
// structs tagged with `db` or into a scalar for single-column queries.
type Pool interface {
	Execx(ctx context.Context, sqlizer squirrel.Sqlizer) (pgconn.CommandTag, error)
	Getx(ctx context.Context, dest any, sqlizer squirrel.Sqlizer) error
	Selectx(ctx context.Context, dest any, sqlizer squirrel.Sqlizer) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

type pool struct {
	*pgxpool.Pool
}

func New(ctx context.Context, dsn string) (Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	err = backoff.Retry(
		func() error {
			pingErr := p.Ping(ctx)
			if pingErr != nil {
				logger.Warnf(ctx, "postgres ping: %s", pingErr.Error())
			}
			return pingErr
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 10),
			ctx,
		),
	)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &pool{p}, nil
}

func (p *pool) Execx(ctx context.Context, sqlizer squirrel.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := sqlizer.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("ToSql: %w", err)
	}
	return p.Exec(ctx, sql, args...)
}

func (p *pool) Getx(ctx context.Context, dest any, sqlizer squirrel.Sqlizer) error {
	sql, args, err := sqlizer.ToSql()
	if err != nil {
		return fmt.Errorf("ToSql: %w", err)
	}

	rows, err := p.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return err
		}
		return pgx.ErrNoRows
	}
	if err = pgxscan.ScanRow(dest, rows); err != nil {
		return err
	}
	rows.Close()

	return rows.Err()
}

func (p *pool) Selectx(ctx context.Context, dest any, sqlizer squirrel.Sqlizer) error {
	sql, args, err := sqlizer.ToSql()
	if err != nil {
		return fmt.Errorf("ToSql: %w", err)
	}

	rows, err := p.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	return pgxscan.ScanAll(dest, rows)
}
