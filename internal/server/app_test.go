package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/reviewhub/internal/server/config"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/memrepo"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/repomanager"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddress = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func stubSeams(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) {
	t.Helper()
	origOpen, origRM := openDB, newRepositoryManager
	t.Cleanup(func() {
		openDB = origOpen
		newRepositoryManager = origRM
	})

	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return rm }
}

type failingMigrations struct{ *memrepo.Manager }

func (failingMigrations) RunMigrations(context.Context, *sql.DB) error {
	return errors.New("migrate failed")
}

func TestNewApp_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	stubSeams(t, db, memrepo.New())

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	require.NotNil(t, app.server)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_PingError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()
	stubSeams(t, db, memrepo.New())

	_, err = NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "db ping error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_MigrationError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()
	stubSeams(t, db, failingMigrations{memrepo.New()})

	_, err = NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "migrate failed")
}

func TestNewApp_OpenError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }

	_, err := NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "bad dsn")
}
