package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteTransaction_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM bookings").WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = ExecuteTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE id = $1", "b1")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTransaction_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = ExecuteTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTransaction_BeginFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err = ExecuteTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("duplicate")))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23503"})))
	assert.False(t, IsForeignKeyViolation(&pq.Error{Code: "23505"}))
}
