package repos

import (
	"context"
	"os"
	"testing"

	"github.com/guregu/null/v5"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/karaki0910/my-macro-project/models"
)

const testIndicator = "_TEST.INDICATOR"

func getConnection(t *testing.T, ctx context.Context) *Postgres {
	t.Helper()

	// a local .env is optional here, the gate is DATABASE_URL itself
	_ = godotenv.Load("../.env")

	connectionString := os.Getenv("DATABASE_URL")
	if connectionString == "" {
		t.Skip("DATABASE_URL is not set, skipping repo integration tests")
	}

	pg, err := GetPostgresConnection(ctx, connectionString)
	require.NoError(t, err, "error getting postgres connection")
	require.NoError(t, pg.EnsureSchema(ctx), "error ensuring schema")

	t.Cleanup(func() {
		_, _ = pg.DeleteObservations(context.Background(), testIndicator, nil)
		pg.Close()
	})

	return pg
}

func testObservations() []*m.Observation {
	return []*m.Observation{
		{Indicator: testIndicator, CountryCode: "AUS", CountryName: "Australia", Year: 2018, Value: null.NewFloat(2.8, true)},
		{Indicator: testIndicator, CountryCode: "AUS", CountryName: "Australia", Year: 2019, Value: null.NewFloat(1.9, true)},
		{Indicator: testIndicator, CountryCode: "JPN", CountryName: "Japan", Year: 2018, Value: null.NewFloat(0.6, true)},
		{Indicator: testIndicator, CountryCode: "JPN", CountryName: "Japan", Year: 2019, Value: null.Float{}},
	}
}

func Test_Base_CanGetConnectionAndPing(t *testing.T) {
	ctx := context.Background()
	pg := getConnection(t, ctx)

	assert.NoError(t, pg.Ping(ctx))
}

func Test_ObservationRepo_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	pg := getConnection(t, ctx)

	inserted, err := pg.InsertObservations(ctx, testObservations(), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 4, inserted)

	rows, err := pg.GetObservations(ctx, testIndicator, 2018, 2019)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// the select orders by country then year
	assert.Equal(t, "AUS", rows[0].CountryCode)
	assert.Equal(t, 2018, rows[0].Year)
	assert.Equal(t, 2.8, rows[0].Value.Float64)
	assert.False(t, rows[3].Value.Valid, "null value should come back missing")

	set, err := pg.GetObservationSet(ctx, testIndicator, 2018, 2019)
	require.NoError(t, err)
	assert.Len(t, set.ByCountry, 2)
	assert.Len(t, set.ByCountry["AUS"], 2)
}

func Test_ObservationRepo_WindowFiltersYears(t *testing.T) {
	ctx := context.Background()
	pg := getConnection(t, ctx)

	_, err := pg.InsertObservations(ctx, testObservations(), nil)
	require.NoError(t, err)

	rows, err := pg.GetObservations(ctx, testIndicator, 2019, 2019)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, 2019, row.Year)
	}
}

func Test_ObservationRepo_Replace(t *testing.T) {
	ctx := context.Background()
	pg := getConnection(t, ctx)

	_, err := pg.InsertObservations(ctx, testObservations(), nil)
	require.NoError(t, err)

	replacement := []*m.Observation{
		{Indicator: testIndicator, CountryCode: "CAN", CountryName: "Canada", Year: 2019, Value: null.NewFloat(1.9, true)},
	}
	inserted, err := pg.ReplaceObservations(ctx, testIndicator, replacement)
	require.NoError(t, err)
	assert.EqualValues(t, 1, inserted)

	rows, err := pg.GetObservations(ctx, testIndicator, 1900, 2100)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CAN", rows[0].CountryCode)
}

func Test_ObservationRepo_Upsert(t *testing.T) {
	ctx := context.Background()
	pg := getConnection(t, ctx)

	obs := &m.Observation{Indicator: testIndicator, CountryCode: "USA", CountryName: "United States", Year: 2019, Value: null.NewFloat(2.5, true)}
	require.NoError(t, pg.UpsertObservation(ctx, obs))

	// second write with the same key updates in place
	obs.Value = null.NewFloat(2.3, true)
	require.NoError(t, pg.UpsertObservation(ctx, obs))

	rows, err := pg.GetObservations(ctx, testIndicator, 2019, 2019)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.3, rows[0].Value.Float64)
}

func Test_ObservationRepo_CachedIndicators(t *testing.T) {
	ctx := context.Background()
	pg := getConnection(t, ctx)

	_, err := pg.InsertObservations(ctx, testObservations(), nil)
	require.NoError(t, err)

	cached, err := pg.GetCachedIndicators(ctx)
	require.NoError(t, err)

	var found *m.CachedIndicator
	for _, c := range cached {
		if c.Indicator == testIndicator {
			found = c
		}
	}
	require.NotNil(t, found, "test indicator should be listed")
	assert.Equal(t, 2, found.Countries)
	assert.Equal(t, 2018, found.FirstYear)
	assert.Equal(t, 2019, found.LastYear)
	assert.Equal(t, 4, found.TotalRows)
}
