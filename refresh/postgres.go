package refresh

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/MrEthical07/authcore/refresh/migrations"
)

// DBTX is the subset of *sql.DB / *sql.Tx the store needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore implements [Store] over a refresh_tokens table. The redeem
// path relies on a conditional UPDATE and the affected-row count rather than
// a lookup-then-update pair, so concurrent redeemers of the same token
// cannot both win.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore constructs a store bound to the given DBTX.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// Open connects to Postgres via the pgx stdlib driver and applies the
// embedded goose migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

func (s *PostgresStore) Create(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO refresh_tokens (token, jwt_id, user_id, issued_at, expires_at, is_used, is_revoked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.Token, rec.JWTID, rec.UserID, rec.IssuedAt, rec.ExpiresAt, rec.Used, rec.Revoked)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, token string) (*Record, error) {
	query := `
		SELECT jwt_id, user_id, issued_at, expires_at, is_used, is_revoked
		FROM refresh_tokens
		WHERE token = $1
	`
	rec := &Record{Token: token}
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&rec.JWTID, &rec.UserID, &rec.IssuedAt, &rec.ExpiresAt, &rec.Used, &rec.Revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return rec, nil
}

func (s *PostgresStore) Redeem(ctx context.Context, token string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET is_used = TRUE
		WHERE token = $1 AND is_used = FALSE AND is_revoked = FALSE
	`
	res, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if affected == 1 {
		return true, nil
	}

	// Zero rows: either the record is already spent/revoked, or it never
	// existed. Distinguish so callers can report the right reason.
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token = $1)`, token).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *PostgresStore) Revoke(ctx context.Context, token string) error {
	query := `
		UPDATE refresh_tokens
		SET is_revoked = TRUE
		WHERE token = $1
	`
	res, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
