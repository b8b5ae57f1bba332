package postgres

import (
	"testing"

	"github.com/DRSN-tech/nudge-backend/internal/cfg"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN(&cfg.PGDBCfg{
		Host:     "db",
		Port:     "5432",
		User:     "nudge",
		Password: "secret",
		DBName:   "nudge",
		SSLMode:  "disable",
	})

	assert.Equal(t, "host=db port=5432 user=nudge password=secret dbname=nudge sslmode=disable", dsn)
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	err := MigrateDown("host=unused", DefaultMigrations, 0, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps must be positive")
}
