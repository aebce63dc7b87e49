package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg, err := mysql.ParseDSN(DSN("tents", "p@ss", "db", "3306", "tent_booking"))
	require.NoError(t, err)

	assert.Equal(t, "tents", cfg.User)
	assert.Equal(t, "p@ss", cfg.Passwd)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "tent_booking", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, time.UTC, cfg.Loc)
}

func TestSchemaOrder(t *testing.T) {
	// Tables must be created after the tables they reference.
	require.Len(t, schema, 4)
	assert.Contains(t, schema[0], "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, schema[3], "REFERENCES tent_types(id)")
}
