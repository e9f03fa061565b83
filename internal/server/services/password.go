package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// resetSecretBytes is the entropy of the reset secret: 20 random bytes,
// 160 bits, returned to the caller as 40 hex characters.
const resetSecretBytes = 20

// PasswordService implements the password-reset flow: issue a time-boxed
// secret after a date-of-birth check, and consume it to set a new password.
// Only the SHA-256 digest of the secret is ever stored.
type PasswordService struct {
	db                 *sql.DB
	repomanager        repomanager.RepositoryManager
	resetTokenValidity time.Duration
	now                func() time.Time
}

func NewPasswordService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *PasswordService {
	return &PasswordService{
		db:                 db,
		repomanager:        m,
		resetTokenValidity: cfg.ResetTokenValidityDuration,
		now:                time.Now,
	}
}

// ForgotParams is the validated input for Forgot and VerifyDateOfBirth.
type ForgotParams struct {
	Email       string
	DateOfBirth string
}

func (p ForgotParams) Validate() error {
	var c fieldCollector
	if !validEmail(p.Email) {
		c.add("email", "must be a valid email")
	}
	if _, err := parseDate(p.DateOfBirth); err != nil {
		c.add("dateOfBirth", "must be a valid date")
	}
	return c.err()
}

// Forgot verifies the date of birth for the account with the given email and,
// on a match, issues a fresh reset secret valid for the configured window.
// A prior pending reset is silently overwritten. The plaintext secret is the
// product of this operation; delivering it out-of-band is the caller's concern.
func (s *PasswordService) Forgot(ctx context.Context, p ForgotParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, NormalizeEmail(p.Email))
	if err != nil {
		return "", err
	}

	dob, _ := parseDate(p.DateOfBirth)
	if !sameCalendarDay(user.DateOfBirth, dob) {
		// Deliberately vague: does not say which part of the record differs.
		return "", common.NewValidationError(common.FieldError{
			Field: "dateOfBirth", Message: "does not match our records",
		})
	}

	secret, err := common.MakeRandHexString(resetSecretBytes)
	if err != nil {
		return "", common.ErrorInternal
	}

	expiry := s.now().Add(s.resetTokenValidity)
	if err := repo.SetResetToken(ctx, user.ID, hashResetSecret(secret), expiry); err != nil {
		return "", fmt.Errorf("storing reset token: %w", err)
	}

	return secret, nil
}

// VerifyDateOfBirth is the read-only pre-flight check: it reports whether the
// supplied date of birth matches the account's records without touching any
// reset state.
func (s *PasswordService) VerifyDateOfBirth(ctx context.Context, p ForgotParams) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, NormalizeEmail(p.Email))
	if err != nil {
		return false, err
	}

	dob, _ := parseDate(p.DateOfBirth)
	return sameCalendarDay(user.DateOfBirth, dob), nil
}

// ResetParams is the validated input for Reset.
type ResetParams struct {
	Token    string
	Password string
}

func (p ResetParams) Validate() error {
	var c fieldCollector
	if p.Token == "" {
		c.add("token", "is required")
	}
	if msg := validPassword(p.Password); msg != "" {
		c.add("password", msg)
	}
	return c.err()
}

// Reset consumes a reset secret: the matching user gets the new password and
// the pending reset is cleared in the same statement. Token mismatch and
// expiry collapse into ErrInvalidOrExpiredResetToken.
func (s *PasswordService) Reset(ctx context.Context, p ResetParams) error {
	if err := p.Validate(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), passwordHashCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	_, err = repo.ConsumeResetToken(ctx, hashResetSecret(p.Token), string(hash), s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredResetToken
		}
		return fmt.Errorf("consuming reset token: %w", err)
	}
	return nil
}

// hashResetSecret digests the plaintext secret for storage and lookup. A fast
// digest is sufficient here: the secret itself carries the entropy.
func hashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
