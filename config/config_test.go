package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, "output", config.OutputDir)
	assert.Equal(t, 100.0, config.Smoothing)
	assert.Equal(t, 0.35, config.CapitalShare)
	assert.Equal(t, 1990, config.StartYear)
	assert.Equal(t, 2019, config.EndYear)
	assert.Equal(t, 30*time.Second, config.RequestTimeout)
}

func Test_Load_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MACRO_PORT", "9090")
	t.Setenv("MACRO_CAPITAL_SHARE", "0.3")
	t.Setenv("MACRO_REQUEST_TIMEOUT", "5s")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Port)
	assert.Equal(t, 0.3, config.CapitalShare)
	assert.Equal(t, 5*time.Second, config.RequestTimeout)
}

func Test_Load_UnprefixedDatabaseUrl(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/macro")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/macro", config.DatabaseUrl)
}
