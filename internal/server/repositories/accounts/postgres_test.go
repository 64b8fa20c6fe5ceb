package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskforge/internal/common"
	"github.com/dmitrijs2005/taskforge/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var accountColumns = []string{
	"id", "name", "email", "password_hash", "profile_image_url", "role", "is_verified",
	"otp", "otp_expires_at", "otp_failed_count", "otp_resend_count", "otp_blocked_until",
	"created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(5 * time.Minute)

	rows := sqlmock.NewRows(accountColumns).
		AddRow("u-1", "Ann", "a@x.com", "hash", "", "user", false,
			"482913", exp, 2, 1, nil, now, now)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+lower\(email\)\s*=\s*lower\(\$1\)$`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	got, err := repo.FindByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.Role != models.RoleUser || got.IsVerified {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.OTP == nil || *got.OTP != "482913" {
		t.Fatalf("otp not scanned: %+v", got.OTP)
	}
	if got.OTPExpiresAt == nil || !got.OTPExpiresAt.Equal(exp) {
		t.Fatalf("otp expiry not scanned: %v", got.OTPExpiresAt)
	}
	if got.OTPBlockedUntil != nil {
		t.Fatalf("blocked until must be nil, got %v", got.OTPBlockedUntil)
	}
	if got.OTPFailedCount != 2 || got.OTPResendCount != 1 {
		t.Fatalf("counters not scanned: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByEmailForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(accountColumns).
		AddRow("u-1", "Ann", "a@x.com", "hash", "", "admin", true,
			nil, nil, 0, 0, nil, now, now)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+lower\(email\)\s*=\s*lower\(\$1\)\s+FOR\s+UPDATE$`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	got, err := repo.FindByEmailForUpdate(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmailForUpdate error: %v", err)
	}
	if !got.IsVerified || got.Role != models.RoleAdmin || got.OTP != nil || got.OTPExpiresAt != nil {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("u-1").
		WillReturnError(errors.New("db down"))

	_, err := repo.FindByID(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSave_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	otp := "123456"
	exp := now.Add(5 * time.Minute)
	a := &models.Account{
		ID: "u-1", Name: "Ann", Email: "a@x.com", PasswordHash: "hash",
		Role: models.RoleUser, OTP: &otp, OTPExpiresAt: &exp,
	}

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+accounts\s*\(.*\)\s*VALUES\s*\(\$1,.*\$12\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE\s+SET.*RETURNING\s+created_at,\s*updated_at$`).
		WithArgs("u-1", "Ann", "a@x.com", "hash", "", "user", false,
			sql.NullString{String: otp, Valid: true}, sql.NullTime{Time: exp, Valid: true}, 0, 0, sql.NullTime{}).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	if err := repo.Save(context.Background(), a); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !a.CreatedAt.Equal(now) || !a.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps not refreshed: %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSave_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Save(context.Background(), &models.Account{ID: "u-2", Email: "a@x.com", Role: models.RoleUser})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("want common.ErrAlreadyExists, got %v", err)
	}
}

func TestSave_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+accounts`).
		WillReturnError(errors.New("conn reset"))

	err := repo.Save(context.Background(), &models.Account{ID: "u-1"})
	if err == nil || !regexp.MustCompile(`db error: .*conn reset`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
