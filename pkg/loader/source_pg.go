package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource reads the model tables from a PostgreSQL copy of a Temoa database.
type PGSource struct {
	pool *pgxpool.Pool
}

// NewPGSource connects to databaseURL and verifies the connection.
func NewPGSource(ctx context.Context, databaseURL string) (*PGSource, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// a load is a handful of sequential reads
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &PGSource{pool: pool}, nil
}

// Close closes the database connection pool
func (s *PGSource) Close() error {
	s.pool.Close()
	return nil
}

const (
	commoditiesQuery = `SELECT comm_name, flag FROM commodities WHERE flag IN ('s', 'p', 'd', 'e') ORDER BY comm_name`
	periodsQuery     = `SELECT t_periods, flag = 'f' FROM time_periods ORDER BY t_periods`
	demandQuery      = `SELECT regions, periods, demand_comm FROM demand`
	efficiencyQuery  = `
		SELECT regions, input_comm, tech, vintage, output_comm
		FROM efficiency
		ORDER BY regions, tech, vintage, input_comm, output_comm
	`
	lifetimeTechQuery    = `SELECT regions, tech, life FROM lifetime_tech`
	lifetimeProcessQuery = `SELECT regions, tech, vintage, life_process FROM lifetime_process`
	linkedTechQuery      = `SELECT primary_region, primary_tech, emis_comm, linked_tech FROM linked_techs`
)

// Load reads every table and validates the result.
func (s *PGSource) Load(ctx context.Context) (*Dataset, error) {
	var (
		ds  Dataset
		err error
	)
	if ds.Commodities, err = collect[CommodityRow](ctx, s.pool, commoditiesQuery); err != nil {
		return nil, err
	}
	if ds.Periods, err = collect[PeriodRow](ctx, s.pool, periodsQuery); err != nil {
		return nil, err
	}
	if ds.Demands, err = collect[DemandRow](ctx, s.pool, demandQuery); err != nil {
		return nil, err
	}
	if ds.Efficiency, err = collect[EfficiencyRow](ctx, s.pool, efficiencyQuery); err != nil {
		return nil, err
	}
	if ds.LifetimeTech, err = collect[LifetimeTechRow](ctx, s.pool, lifetimeTechQuery); err != nil {
		return nil, err
	}
	if ds.LifetimeProcess, err = collect[LifetimeProcessRow](ctx, s.pool, lifetimeProcessQuery); err != nil {
		return nil, err
	}
	if ds.LinkedTechs, err = collect[LinkedTechRow](ctx, s.pool, linkedTechQuery); err != nil {
		return nil, err
	}

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("database dataset: %w", err)
	}
	return &ds, nil
}

// collect scans every row of query into T by column position.
func collect[T any](ctx context.Context, pool *pgxpool.Pool, query string) ([]T, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", query, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[T])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %q: %w", query, err)
	}
	return out, nil
}

var (
	_ Source = (*PGSource)(nil)
	_ Source = FileSource{}
)
