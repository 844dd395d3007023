package client

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/pkg/logger"
)

func TestPing_PostgresAndRedis(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c := &Client{Postgres: db, Redis: rdb}

	mock.ExpectPing()
	assert.NoError(t, c.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, c.Ping(context.Background()))

	mock.ExpectClose()
	c.GracefulShutdown(logger.Discard())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := &Client{Redis: rdb}

	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestPing_NoStores(t *testing.T) {
	assert.NoError(t, NewClient().Ping(context.Background()))
}
