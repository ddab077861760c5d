package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"traffic-image-server/internal/config"
)

// Store reads rules from PostgreSQL. Expected schema is in configs/schema.sql.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

func New(ctx context.Context, cfg config.Config) (*Store, error) {
	dsn := cfg.DSN()
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Postgres.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Postgres.MaxIdleConns)
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Store{pool: pool, table: cfg.Postgres.Table}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Name() string { return "postgres:" + s.table }

// LoadRules returns all enabled rules ordered by position.
func (s *Store) LoadRules(ctx context.Context) ([]RuleRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, rulesQuery(s.table))
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var out []RuleRow
	for rows.Next() {
		var (
			role                       string
			addr, mask, country, strat sql.NullString
			images                     []string
		)
		if err := rows.Scan(&role, &addr, &mask, &country, &strat, &images); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, RuleRow{
			Role:     role,
			Addr:     addr.String,
			Mask:     mask.String,
			Country:  country.String,
			Strategy: strat.String,
			Images:   images,
		})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func rulesQuery(table string) string {
	return fmt.Sprintf(`
		SELECT role, addr, mask, country, strategy, images
		FROM %s
		WHERE enabled
		ORDER BY position, id
	`, pgx.Identifier{table}.Sanitize())
}
