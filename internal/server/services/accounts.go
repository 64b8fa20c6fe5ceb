// Package services contains server-side business logic. AccountService
// drives registration, e-mail verification, login, profile management and
// password reset on top of the verification state machine.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/common"
	"github.com/dmitrijs2005/taskforge/internal/cryptox"
	"github.com/dmitrijs2005/taskforge/internal/dbx"
	"github.com/dmitrijs2005/taskforge/internal/logging"
	"github.com/dmitrijs2005/taskforge/internal/server/auth"
	"github.com/dmitrijs2005/taskforge/internal/server/config"
	"github.com/dmitrijs2005/taskforge/internal/server/mailer"
	"github.com/dmitrijs2005/taskforge/internal/server/models"
	"github.com/dmitrijs2005/taskforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskforge/internal/server/verification"
	"github.com/google/uuid"
)

// Session is an authenticated account together with its session token.
type Session struct {
	Account *models.Account
	Token   string
}

// RegisterInput is the payload of a sign-up request.
type RegisterInput struct {
	Name             string
	Email            string
	Password         string
	ProfileImageURL  string
	AdminInviteToken string
}

// ProfileUpdate carries the optional profile fields; empty values are kept.
type ProfileUpdate struct {
	Name            string
	Email           string
	Password        string
	ProfileImageURL string
}

// AccountService implements the account operations exposed over HTTP and gRPC.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	signer      *auth.Signer
	sender      mailer.Sender
	composer    *mailer.Composer
	policy      verification.Policy
	sessionTTL  time.Duration
	resetTTL    time.Duration
	inviteToken string
	logger      logging.Logger

	now     func() time.Time
	newCode func() (string, error)
	newID   func() string
}

// NewAccountService wires an AccountService from the server configuration.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, sender mailer.Sender, cfg *config.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		signer:      auth.NewSigner(cfg.SecretKey),
		sender:      sender,
		composer:    mailer.NewComposer(cfg.FromName, cfg.FrontendURL),
		policy:      cfg.VerificationPolicy(),
		sessionTTL:  cfg.SessionTokenValidityDuration,
		resetTTL:    cfg.ResetTokenValidityDuration,
		inviteToken: cfg.AdminInviteToken,
		logger:      logger.With("module", "accounts"),
		now:         time.Now,
		newCode:     verification.NewCode,
		newID:       uuid.NewString,
	}
}

// WithClock replaces the time source of the service and its token signer.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	s.signer = s.signer.WithClock(now)
	return s
}

// WithCodeSource replaces the OTP generator.
func (s *AccountService) WithCodeSource(gen func() (string, error)) *AccountService {
	s.newCode = gen
	return s
}

// Signer exposes the token signer so transports can authenticate sessions.
func (s *AccountService) Signer() *auth.Signer {
	return s.signer
}

// Register creates an unverified account, stores a fresh OTP on it and mails
// the code. The account survives a delivery failure.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, common.Invalid("Name, email and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, common.Invalid("Invalid email address")
	}

	repo := s.repomanager.Accounts(s.db)
	if _, err := repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, common.ErrAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, s.storeError(ctx, "register", err)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, common.Invalid("Password is too long")
		}
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	role := models.RoleUser
	if in.AdminInviteToken != "" && s.inviteToken != "" && cryptox.EqualStrings(in.AdminInviteToken, s.inviteToken) {
		role = models.RoleAdmin
	}

	acc := &models.Account{
		ID:              s.newID(),
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    hash,
		ProfileImageURL: strings.TrimSpace(in.ProfileImageURL),
		Role:            role,
	}

	code, err := s.issueOTP(acc)
	if err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, acc); err != nil {
		return nil, s.storeError(ctx, "register", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", acc.ID, "role", string(acc.Role))

	err = s.deliver(ctx, mailer.KindRegistration, acc, mailer.Data{
		Name: acc.Name,
		Code: code,
		Link: s.composer.VerifyLink(acc.Email),
		TTL:  s.policy.OTPTTL,
	})
	if err != nil {
		return acc, err
	}
	return acc, nil
}

// VerifyOTP checks a submitted code and, on success, marks the account as
// verified and opens a session.
func (s *AccountService) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(code) == "" {
		return nil, common.Invalid("Email and OTP are required")
	}

	var (
		acc       *models.Account
		domainErr error
	)
	now := s.now()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		a, err := repo.FindByEmailForUpdate(ctx, email)
		if err != nil {
			return err
		}
		changed, verr := s.policy.VerifyOTP(a, code, now)
		if changed {
			if err := repo.Save(ctx, a); err != nil {
				return err
			}
		}
		acc, domainErr = a, verr
		return nil
	})
	if err != nil {
		return nil, s.storeError(ctx, "verify otp", err)
	}
	if domainErr != nil {
		s.logger.Info(ctx, "otp rejected", "account_id", acc.ID, "reason", domainErr.Error(), "failed_count", acc.OTPFailedCount)
		return nil, domainErr
	}

	s.logger.Info(ctx, "account verified", "account_id", acc.ID)
	return s.openSession(acc)
}

// ResendOTP approves a resend request and mails a new code.
func (s *AccountService) ResendOTP(ctx context.Context, email string) error {
	return s.resend(ctx, email, mailer.KindResendOTP)
}

// ResendVerification is the resend entry point for accounts created before
// OTP verification existed. It differs from ResendOTP only in the e-mail it
// sends; a lockout is reported with the raw unblock time.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	return s.resend(ctx, email, mailer.KindLegacyVerification)
}

func (s *AccountService) resend(ctx context.Context, email string, kind mailer.Kind) error {
	email = normalizeEmail(email)
	if email == "" {
		return common.Invalid("Email is required")
	}

	var (
		acc       *models.Account
		code      string
		domainErr error
	)
	now := s.now()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		a, err := repo.FindByEmailForUpdate(ctx, email)
		if err != nil {
			return err
		}
		changed, rerr := s.policy.ApproveResend(a, now)
		if rerr == nil {
			if code, err = s.issueOTPAt(a, now); err != nil {
				return err
			}
		}
		if changed {
			if err := repo.Save(ctx, a); err != nil {
				return err
			}
		}
		acc, domainErr = a, rerr
		return nil
	})
	if err != nil {
		return s.storeError(ctx, "resend otp", err)
	}
	if domainErr != nil {
		s.logger.Info(ctx, "resend rejected", "account_id", acc.ID, "reason", domainErr.Error())
		return domainErr
	}

	data := mailer.Data{Name: acc.Name, Code: code, TTL: s.policy.OTPTTL}
	if kind == mailer.KindLegacyVerification {
		data.Link = s.composer.VerifyLink(acc.Email)
	}
	if err := s.deliver(ctx, kind, acc, data); err != nil {
		return err
	}

	s.logger.Info(ctx, "otp resent", "account_id", acc.ID, "resend_count", acc.OTPResendCount)
	return nil
}

// Login opens a session for a verified account with a matching password.
// Unverified accounts are rejected before the password is checked.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.ErrInvalidCredentials
	}

	acc, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.storeError(ctx, "login", err)
	}

	if !acc.IsVerified {
		return nil, &common.UnverifiedAccountError{Email: acc.Email}
	}
	if !cryptox.CheckPassword(acc.PasswordHash, password) {
		s.logger.Info(ctx, "login rejected", "account_id", acc.ID)
		return nil, common.ErrInvalidCredentials
	}

	return s.openSession(acc)
}

// ForgotPassword mails a short-lived password reset link.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return common.Invalid("Email is required")
	}

	acc, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	if err != nil {
		return s.storeError(ctx, "forgot password", err)
	}

	token, err := s.signer.Sign(acc.ID, auth.PurposeReset, s.resetTTL)
	if err != nil {
		return fmt.Errorf("%w: sign reset token: %v", common.ErrorInternal, err)
	}

	return s.deliver(ctx, mailer.KindPasswordReset, acc, mailer.Data{
		Name: acc.Name,
		Link: s.composer.ResetLink(token),
		TTL:  s.resetTTL,
	})
}

// ResetPassword replaces the password of the account named by a reset token.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	id, err := s.signer.Verify(token, auth.PurposeReset)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return common.Invalid("New password is required")
	}

	repo := s.repomanager.Accounts(s.db)
	acc, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredToken
		}
		return s.storeError(ctx, "reset password", err)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return common.Invalid("Password is too long")
		}
		return fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}
	acc.PasswordHash = hash

	if err := repo.Save(ctx, acc); err != nil {
		return s.storeError(ctx, "reset password", err)
	}

	s.logger.Info(ctx, "password reset", "account_id", acc.ID)
	return nil
}

// Authenticate resolves a session token to an account id.
func (s *AccountService) Authenticate(token string) (string, error) {
	return s.signer.Verify(token, auth.PurposeSession)
}

// GetProfile returns the account with the given id.
func (s *AccountService) GetProfile(ctx context.Context, id string) (*models.Account, error) {
	acc, err := s.repomanager.Accounts(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "get profile", err)
	}
	return acc, nil
}

// UpdateProfile applies the non-empty fields of upd and issues a fresh session.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*Session, error) {
	repo := s.repomanager.Accounts(s.db)
	acc, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "update profile", err)
	}

	if v := strings.TrimSpace(upd.Name); v != "" {
		acc.Name = v
	}
	if v := normalizeEmail(upd.Email); v != "" {
		if _, err := mail.ParseAddress(v); err != nil {
			return nil, common.Invalid("Invalid email address")
		}
		acc.Email = v
	}
	if v := strings.TrimSpace(upd.ProfileImageURL); v != "" {
		acc.ProfileImageURL = v
	}
	if upd.Password != "" {
		hash, err := cryptox.HashPassword(upd.Password)
		if err != nil {
			if errors.Is(err, common.ErrValidation) {
				return nil, common.Invalid("Password is too long")
			}
			return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
		}
		acc.PasswordHash = hash
	}

	if err := repo.Save(ctx, acc); err != nil {
		return nil, s.storeError(ctx, "update profile", err)
	}
	return s.openSession(acc)
}

// --- helpers below ---

func (s *AccountService) issueOTP(a *models.Account) (string, error) {
	return s.issueOTPAt(a, s.now())
}

func (s *AccountService) issueOTPAt(a *models.Account, now time.Time) (string, error) {
	code, err := s.newCode()
	if err != nil {
		return "", fmt.Errorf("%w: generate otp: %v", common.ErrorInternal, err)
	}
	s.policy.IssueOTP(a, code, now)
	return code, nil
}

func (s *AccountService) openSession(a *models.Account) (*Session, error) {
	token, err := s.signer.Sign(a.ID, auth.PurposeSession, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: sign session token: %v", common.ErrorInternal, err)
	}
	return &Session{Account: a, Token: token}, nil
}

func (s *AccountService) deliver(ctx context.Context, kind mailer.Kind, a *models.Account, d mailer.Data) error {
	msg, err := s.composer.Compose(kind, a.Email, d)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "email delivery failed", "account_id", a.ID, "subject", msg.Subject, "error", err)
		return fmt.Errorf("%w: %v", common.ErrDeliveryFailed, err)
	}
	return nil
}

// storeError passes lookup outcomes through and wraps everything else as
// common.ErrStoreUnavailable.
func (s *AccountService) storeError(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrAlreadyExists) {
		return err
	}
	if errors.Is(err, common.ErrorInternal) {
		return err
	}
	s.logger.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
