package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"presyo-tracker/internal/market"
	"presyo-tracker/internal/registry"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertObservationSQL = `INSERT INTO observations (
        region_id,
        region_name,
        category,
        category_label,
        commodity,
        specification,
        unit,
        market,
        obs_date,
        price
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
    )
    ON CONFLICT (region_id, category, commodity, market, obs_date) DO UPDATE
    SET
        region_name    = EXCLUDED.region_name,
        category_label = EXCLUDED.category_label,
        specification  = EXCLUDED.specification,
        unit           = EXCLUDED.unit,
        price          = EXCLUDED.price;`

	listObservationsSQL = `SELECT
        region_id,
        region_name,
        category,
        category_label,
        commodity,
        specification,
        unit,
        market,
        obs_date,
        price
    FROM observations
    ORDER BY region_id, category, commodity, market, obs_date;`

	listSeriesObservationsSQL = `SELECT
        region_id,
        region_name,
        category,
        category_label,
        commodity,
        specification,
        unit,
        market,
        obs_date,
        price
    FROM observations
    WHERE region_id = $1
      AND commodity = $2
    ORDER BY obs_date, market;`

	listRecentSeriesObservationsSQL = `SELECT
        region_id,
        region_name,
        category,
        category_label,
        commodity,
        specification,
        unit,
        market,
        obs_date,
        price
    FROM observations
    WHERE region_id = $1
      AND commodity = $2
    ORDER BY obs_date DESC, market
    LIMIT $3;`

	countObservationsSQL = `SELECT COUNT(*) FROM observations;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// ObservationStore defines persistence for the accumulated observation
// history.
type ObservationStore interface {
	UpsertObservations(ctx context.Context, observations []market.Observation) error
	ListObservations(ctx context.Context) ([]market.Observation, error)
	ListSeriesObservations(ctx context.Context, regionID registry.RegionID, commodity string) ([]market.Observation, error)
	ListRecentSeriesObservations(ctx context.Context, regionID registry.RegionID, commodity string, limit int) ([]market.Observation, error)
	CountObservations(ctx context.Context) (int64, error)
}

// AdvisoryLocker exposes advisory lock helpers, used so overlapping
// scheduled runs do not double-write the same date.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store persists and reads back the observation history.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// Best effort; the lock also drops when the connection closes.
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

// UpsertObservations writes a batch of observations; a re-run for an
// already stored (region, category, commodity, market, date) overwrites
// the earlier write.
func (s *Store) UpsertObservations(ctx context.Context, observations []market.Observation) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, obs := range observations {
		var price any
		if obs.Price != nil {
			price = obs.Price.String()
		}
		batch.Queue(upsertObservationSQL,
			int(obs.RegionID),
			obs.Region,
			obs.Category,
			obs.CategoryLabel,
			obs.Commodity,
			obs.Specification,
			obs.Unit,
			obs.Market,
			obs.Date,
			price,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	for range observations {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("upsert observation: %w", execErr)
		}
	}
	return nil
}

// ListObservations returns the full accumulated history in deterministic
// key order.
func (s *Store) ListObservations(ctx context.Context) ([]market.Observation, error) {
	return s.list(ctx, listObservationsSQL)
}

// ListSeriesObservations returns one (region, commodity) history ordered by
// date.
func (s *Store) ListSeriesObservations(ctx context.Context, regionID registry.RegionID, commodity string) ([]market.Observation, error) {
	return s.list(ctx, listSeriesObservationsSQL, int(regionID), commodity)
}

// ListRecentSeriesObservations returns the most recent observations for one
// (region, commodity), newest first.
func (s *Store) ListRecentSeriesObservations(ctx context.Context, regionID registry.RegionID, commodity string, limit int) ([]market.Observation, error) {
	return s.list(ctx, listRecentSeriesObservationsSQL, int(regionID), commodity, limit)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]market.Observation, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, query, args...)
	if queryErr != nil {
		return nil, fmt.Errorf("list observations: %w", queryErr)
	}
	defer rows.Close()

	observations := make([]market.Observation, 0)
	for rows.Next() {
		obs, scanErr := scanObservation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		observations = append(observations, obs)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return observations, nil
}

// CountObservations counts stored observations.
func (s *Store) CountObservations(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countObservationsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count observations: %w", scanErr)
	}
	return count, nil
}

func scanObservation(rows pgx.Rows) (market.Observation, error) {
	var (
		regionID int
		obs      market.Observation
		date     time.Time
		priceStr sql.NullString
	)

	if err := rows.Scan(
		&regionID,
		&obs.Region,
		&obs.Category,
		&obs.CategoryLabel,
		&obs.Commodity,
		&obs.Specification,
		&obs.Unit,
		&obs.Market,
		&date,
		&priceStr,
	); err != nil {
		return market.Observation{}, err
	}

	obs.RegionID = registry.RegionID(regionID)
	obs.Date = market.Day(date)

	if priceStr.Valid {
		price, convErr := decimal.NewFromString(priceStr.String)
		if convErr != nil {
			return market.Observation{}, fmt.Errorf("parse price: %w", convErr)
		}
		obs.Price = &price
	}

	return obs, nil
}

var _ ObservationStore = (*Store)(nil)
var _ AdvisoryLocker = (*Store)(nil)
