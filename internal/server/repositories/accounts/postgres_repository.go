package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/common"
	"github.com/dmitrijs2005/taskforge/internal/dbx"
	"github.com/dmitrijs2005/taskforge/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectColumns = `id, name, email, password_hash, profile_image_url, role, is_verified,
		otp, otp_expires_at, otp_failed_count, otp_resend_count, otp_blocked_until,
		created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE lower(email) = lower($1)`
	return r.findOne(ctx, query, email)
}

func (r *PostgresRepository) FindByEmailForUpdate(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE lower(email) = lower($1) FOR UPDATE`
	return r.findOne(ctx, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	var (
		a                       models.Account
		role                    string
		otp                     sql.NullString
		expiresAt, blockedUntil sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.ProfileImageURL, &role, &a.IsVerified,
		&otp, &expiresAt, &a.OTPFailedCount, &a.OTPResendCount, &blockedUntil,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.Role = models.Role(role)
	if otp.Valid {
		a.OTP = &otp.String
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		a.OTPExpiresAt = &t
	}
	if blockedUntil.Valid {
		t := blockedUntil.Time
		a.OTPBlockedUntil = &t
	}

	return &a, nil
}

// Save upserts the account by id and refreshes the store-maintained timestamps.
func (r *PostgresRepository) Save(ctx context.Context, a *models.Account) error {
	query :=
		`INSERT INTO accounts (id, name, email, password_hash, profile_image_url, role, is_verified,
		     otp, otp_expires_at, otp_failed_count, otp_resend_count, otp_blocked_until)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE SET
		     name = EXCLUDED.name,
		     email = EXCLUDED.email,
		     password_hash = EXCLUDED.password_hash,
		     profile_image_url = EXCLUDED.profile_image_url,
		     role = EXCLUDED.role,
		     is_verified = EXCLUDED.is_verified,
		     otp = EXCLUDED.otp,
		     otp_expires_at = EXCLUDED.otp_expires_at,
		     otp_failed_count = EXCLUDED.otp_failed_count,
		     otp_resend_count = EXCLUDED.otp_resend_count,
		     otp_blocked_until = EXCLUDED.otp_blocked_until,
		     updated_at = now()
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.Name, a.Email, a.PasswordHash, a.ProfileImageURL, string(a.Role), a.IsVerified,
		nullString(a.OTP), nullTime(a.OTPExpiresAt), a.OTPFailedCount, a.OTPResendCount, nullTime(a.OTPBlockedUntil),
	).Scan(&a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
