package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	m "github.com/karaki0910/my-macro-project/models"
	q "github.com/karaki0910/my-macro-project/queries"
)

const observationsTable = "macro_observations"

var observationColumns = []string{"indicator", "country_code", "country_name", "year", "value"}

// EnsureSchema creates the observation cache table when it is not there yet.
func (pg *Postgres) EnsureSchema(ctx context.Context) error {
	sql := q.Get(q.QueryHelper.Create.ObservationsTable)
	if _, err := pg.db.Exec(ctx, sql); err != nil {
		return fmt.Errorf("error creating observations table: %w", err)
	}
	return nil
}

func (pg *Postgres) GetObservations(ctx context.Context, indicator string, startYear, endYear int) ([]*m.Observation, error) {
	sql := q.Get(q.QueryHelper.Select.ObservationsByIndicator)
	args := pgx.NamedArgs{
		"indicator":  indicator,
		"start_year": startYear,
		"end_year":   endYear,
	}

	res, err := Query[m.Observation](ctx, pg, sql, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query observations for %s: %w", indicator, err)
	}
	return res, nil
}

// GetObservationSet loads cached rows grouped by country, ascending by year
// inside each country.
func (pg *Postgres) GetObservationSet(ctx context.Context, indicator string, startYear, endYear int) (*m.ObservationSet, error) {
	observations, err := pg.GetObservations(ctx, indicator, startYear, endYear)
	if err != nil {
		return nil, err
	}
	return m.NewObservationSet(indicator, observations), nil
}

func (pg *Postgres) InsertObservations(ctx context.Context, observations []*m.Observation, tx pgx.Tx) (int64, error) {
	entries := make([][]any, len(observations))
	for i, obs := range observations {
		entries[i] = []any{obs.Indicator, obs.CountryCode, obs.CountryName, obs.Year, obs.Value}
	}

	return pg.BulkInsert(ctx, observationsTable, observationColumns, entries, tx)
}

func (pg *Postgres) UpsertObservation(ctx context.Context, obs *m.Observation) error {
	sql := q.Get(q.QueryHelper.Insert.Observation)
	args := pgx.NamedArgs{
		"indicator":    obs.Indicator,
		"country_code": obs.CountryCode,
		"country_name": obs.CountryName,
		"year":         obs.Year,
		"value":        obs.Value,
	}

	if _, err := pg.db.Exec(ctx, sql, args); err != nil {
		return fmt.Errorf("error upserting observation: %w", err)
	}
	return nil
}

func (pg *Postgres) DeleteObservations(ctx context.Context, indicator string, tx pgx.Tx) (int64, error) {
	sql := q.Get(q.QueryHelper.Delete.ObservationsByIndicator)
	args := pgx.NamedArgs{"indicator": indicator}

	var tag pgconn.CommandTag
	var err error
	if tx != nil {
		tag, err = tx.Exec(ctx, sql, args)
	} else {
		tag, err = pg.db.Exec(ctx, sql, args)
	}
	if err != nil {
		return 0, fmt.Errorf("error deleting observations for %s: %w", indicator, err)
	}

	return tag.RowsAffected(), nil
}

// ReplaceObservations swaps the cached rows for one indicator in a single
// transaction.
func (pg *Postgres) ReplaceObservations(ctx context.Context, indicator string, observations []*m.Observation) (int64, error) {
	tx, err := pg.GetTransaction(ctx)
	if err != nil {
		return 0, fmt.Errorf("error starting replace transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := pg.DeleteObservations(ctx, indicator, tx); err != nil {
		return 0, err
	}

	inserted, err := pg.InsertObservations(ctx, observations, tx)
	if err != nil {
		return 0, fmt.Errorf("error inserting observations for %s: %w", indicator, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing replace transaction: %w", err)
	}

	return inserted, nil
}

func (pg *Postgres) GetCachedIndicators(ctx context.Context) ([]*m.CachedIndicator, error) {
	sql := q.Get(q.QueryHelper.Select.CachedIndicators)

	res, err := Query[m.CachedIndicator](ctx, pg, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to query cached indicators: %w", err)
	}
	return res, nil
}
