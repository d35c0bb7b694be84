package database

import (
	"database/sql"
	"errors"
	"net/url"
	"testing"
	"time"

	"catbox/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catboxDB() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:               "db",
		Port:               "5432",
		User:               "catbox",
		Password:           "pw",
		Name:               "catbox",
		SSLMode:            "disable",
		ApplicationName:    "catbox",
		ConnectTimeoutSec:  5,
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
	}
}

func TestBuildPostgresDSN(t *testing.T) {
	t.Run("defaults from config.Load", func(t *testing.T) {
		dsn, err := BuildPostgresDSN(catboxDB())
		require.NoError(t, err)
		assert.Equal(t, "postgres://catbox:pw@db:5432/catbox?application_name=catbox&connect_timeout=5&sslmode=disable", dsn)
	})

	t.Run("credentials are escaped", func(t *testing.T) {
		c := catboxDB()
		c.Password = "p@ss/w:rd?"
		dsn, err := BuildPostgresDSN(c)
		require.NoError(t, err)

		u, err := url.Parse(dsn)
		require.NoError(t, err)
		pw, ok := u.User.Password()
		assert.True(t, ok)
		assert.Equal(t, "p@ss/w:rd?", pw)
		assert.Equal(t, "db:5432", u.Host)
	})

	t.Run("optional parameters are omitted", func(t *testing.T) {
		dsn, err := BuildPostgresDSN(config.DatabaseConfig{Host: "db", Port: "5432", User: "catbox", Name: "catbox"})
		require.NoError(t, err)
		assert.Equal(t, "postgres://catbox@db:5432/catbox", dsn)
	})

	missing := map[string]func(c *config.DatabaseConfig){
		"host": func(c *config.DatabaseConfig) { c.Host = "" },
		"port": func(c *config.DatabaseConfig) { c.Port = "" },
		"user": func(c *config.DatabaseConfig) { c.User = "" },
		"name": func(c *config.DatabaseConfig) { c.Name = "" },
	}
	for field, unset := range missing {
		t.Run("missing "+field, func(t *testing.T) {
			c := catboxDB()
			unset(&c)
			_, err := BuildPostgresDSN(c)
			assert.Error(t, err)
		})
	}
}

func withSQLOpen(t *testing.T, open func(driverName, dataSourceName string) (*sql.DB, error)) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = open
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNewPostgres(t *testing.T) {
	t.Run("applies pool limits and pings", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		var gotDSN string
		withSQLOpen(t, func(_, dsn string) (*sql.DB, error) {
			gotDSN = dsn
			return db, nil
		})
		mock.ExpectPing()

		gotDB, err := NewPostgres(catboxDB())

		require.NoError(t, err)
		assert.Same(t, db, gotDB)
		assert.Contains(t, gotDSN, "application_name=catbox")
		assert.Equal(t, 10, gotDB.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open failure", func(t *testing.T) {
		withSQLOpen(t, func(string, string) (*sql.DB, error) {
			return nil, errors.New("open error")
		})

		gotDB, err := NewPostgres(catboxDB())

		assert.ErrorContains(t, err, "sql open: open error")
		assert.Nil(t, gotDB)
	})

	t.Run("ping failure", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		withSQLOpen(t, func(string, string) (*sql.DB, error) { return db, nil })
		mock.ExpectPing().WillReturnError(errors.New("ping failed"))

		gotDB, err := NewPostgres(catboxDB())

		assert.ErrorContains(t, err, "db ping: ping failed")
		assert.Nil(t, gotDB)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("incomplete config", func(t *testing.T) {
		gotDB, err := NewPostgres(config.DatabaseConfig{})
		assert.Error(t, err)
		assert.Nil(t, gotDB)
	})
}

func TestPingTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, pingTimeout(config.DatabaseConfig{}))
	assert.Equal(t, 2*time.Second, pingTimeout(config.DatabaseConfig{ConnectTimeoutSec: 2}))
}
