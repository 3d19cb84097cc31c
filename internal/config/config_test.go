package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultsWithDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/installments?sslmode=disable")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres://localhost:5432/installments?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 12, cfg.Business.DefaultDurationMonths)
	assert.Equal(t, []int{3, 6, 12}, cfg.GetAllowedDurations())
	assert.Equal(t, 10*time.Minute, cfg.GetPlanCacheTTL())
	assert.Equal(t, 5*time.Second, cfg.GetHealthTimeout())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/installments")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DEFAULT_DURATION_MONTHS", "6")
	t.Setenv("ALLOWED_DURATION_MONTHS", "6,24")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 6, cfg.Business.DefaultDurationMonths)
	assert.Equal(t, []int{6, 24}, cfg.GetAllowedDurations())
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidate_RejectsBadDurationList(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/installments")
	t.Setenv("ALLOWED_DURATION_MONTHS", "3,six,12")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOWED_DURATION_MONTHS")
}
