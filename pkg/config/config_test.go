package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshExp)
	assert.Equal(t, AdmissionOff, cfg.Policy.ExpenseAdmission)
	assert.False(t, cfg.Policy.HideForeignRecords)
	assert.Empty(t, cfg.Notify.AMQPURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/budget.db")
	t.Setenv("JWT_EXPIRATION_MINUTES", "15")
	t.Setenv("EXPENSE_ADMISSION", "enforce_limit")
	t.Setenv("HIDE_FOREIGN_RECORDS", "true")
	t.Setenv("AUTH_RATE_LIMIT", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/budget.db", cfg.Database.SQLitePath)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, AdmissionEnforceLimit, cfg.Policy.ExpenseAdmission)
	assert.True(t, cfg.Policy.HideForeignRecords)
	assert.Zero(t, cfg.RateLimit.AuthMax)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"driver", "DB_DRIVER", "mysql"},
		{"admission", "EXPENSE_ADMISSION", "sometimes"},
		{"number", "SERVER_READ_TIMEOUT", "thirty"},
		{"bool", "HIDE_FOREIGN_RECORDS", "maybe"},
		{"expiration", "JWT_EXPIRATION_MINUTES", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
