package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"sankalpa/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "sankalpa",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=sankalpa sslmode=disable", PrimaryDSN(cfg))
	assert.Empty(t, ReplicaDSN(cfg))

	cfg.DBReadHost, cfg.DBReadPort, cfg.DBReadUser, cfg.DBReadPassword = "replica", "5433", "ro", "rp"
	cfg.DBSSLMode = "require"
	assert.Equal(t, "host=replica port=5433 user=ro password=rp dbname=sankalpa sslmode=require", ReplicaDSN(cfg))
}

func TestMigrateAndReplica(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.NoError(t, configurePool(db))

	// A second in-memory database stands in for the replica.
	require.NoError(t, UseReplica(db, sqlite.Open("file::memory:")))
	assert.NoError(t, UseReplica(db))
	assert.NotNil(t, Read(context.Background(), db))
	assert.NotNil(t, Write(context.Background(), db))
}

func TestCustomGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Zero(t, buf.Len())

	l.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	assert.Zero(t, buf.Len())
}
