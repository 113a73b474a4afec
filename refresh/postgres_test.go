package refresh

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresStore(db), mock, db
}

const (
	insertPattern = `(?s)^\s*INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*$`
	selectPattern = `(?s)^\s*SELECT\s+jwt_id,\s*user_id,\s*issued_at,\s*expires_at,\s*is_used,\s*is_revoked\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`
	redeemPattern = `(?s)^\s*UPDATE\s+refresh_tokens\s+SET\s+is_used\s*=\s*TRUE\s+WHERE\s+token\s*=\s*\$1\s+AND\s+is_used\s*=\s*FALSE\s+AND\s+is_revoked\s*=\s*FALSE\s*$`
	existsPattern = `(?s)^\s*SELECT\s+EXISTS\b`
	revokePattern = `(?s)^\s*UPDATE\s+refresh_tokens\s+SET\s+is_revoked\s*=\s*TRUE\s+WHERE\s+token\s*=\s*\$1\s*$`
)

func TestPostgresCreate(t *testing.T) {
	store, mock, db := newPostgresWithMock(t)
	defer db.Close()

	rec := testRecord("tok-1")
	mock.ExpectExec(insertPattern).
		WithArgs(rec.Token, rec.JWTID, rec.UserID, rec.IssuedAt, rec.ExpiresAt, false, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Create(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateDBError(t *testing.T) {
	store, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertPattern).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), false, false).
		WillReturnError(errors.New("db down"))

	err := store.Create(context.Background(), testRecord("tok-1"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPostgresFind(t *testing.T) {
	store, mock, db := newPostgresWithMock(t)
	defer db.Close()

	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	expires := issued.AddDate(1, 0, 0)
	rows := sqlmock.NewRows([]string{"jwt_id", "user_id", "issued_at", "expires_at", "is_used", "is_revoked"}).
		AddRow("jti-1", "user-1", issued, expires, false, false)

	mock.ExpectQuery(selectPattern).WithArgs("tok-1").WillReturnRows(rows)

	rec, err := store.Find(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", rec.Token)
	assert.Equal(t, "jti-1", rec.JWTID)
	assert.Equal(t, "user-1", rec.UserID)
	assert.True(t, rec.ExpiresAt.Equal(expires))
	assert.False(t, rec.Used)
	assert.False(t, rec.Revoked)
}

func TestPostgresFindNotFound(t *testing.T) {
	store, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectPattern).WithArgs("absent").WillReturnError(sql.ErrNoRows)

	_, err := store.Find(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRedeemWinner(t *testing.T) {
	store, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(redeemPattern).WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := store.Redeem(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRedeemAlreadySpent(t *testing.T) {
	store, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(redeemPattern).WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(existsPattern).WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.Redeem(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresRedeemNotFound(t *testing.T) {
	store, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(redeemPattern).WithArgs("absent").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(existsPattern).WithArgs("absent").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := store.Redeem(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRevoke(t *testing.T) {
	store, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(revokePattern).WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Revoke(context.Background(), "tok-1"))

	mock.ExpectExec(revokePattern).WithArgs("absent").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.Revoke(context.Background(), "absent"), ErrNotFound)
}
