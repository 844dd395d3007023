package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/pkg/logger"
)

func TestRunMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	for _, m := range migrations {
		mock.ExpectExec(regexp.QuoteMeta(m.stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, RunMigration(context.Background(), db, logger.Discard()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigration_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(migrations[0].stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(migrations[1].stmt)).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = RunMigration(context.Background(), db, logger.Discard())
	assert.ErrorContains(t, err, migrations[1].name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaGuardsBookings(t *testing.T) {
	var bookings string
	for _, m := range migrations {
		if m.name == "bookings" {
			bookings = m.stmt
		}
	}
	require.NotEmpty(t, bookings)

	assert.Contains(t, bookings, "booking_reference TEXT NOT NULL UNIQUE")
	assert.Contains(t, bookings, "CHECK (check_in < check_out)")
	assert.Contains(t, bookings, "ON DELETE CASCADE")
}
