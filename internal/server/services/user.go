// Package services contains the server-side business logic: registration and
// login, the password-reset state machine, task CRUD and querying, and the
// avatar object-storage flow. Handlers stay thin; everything with a
// behavioral contract lives here.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is the bcrypt work factor applied to stored passwords.
const passwordHashCost = 12

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService handles registration, login, token refresh, and profile
// operations.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// RegisterParams is the validated input for Register.
type RegisterParams struct {
	Name        string
	Email       string
	Password    string
	DateOfBirth string
}

// Validate checks every field against its constraint and reports all
// violations at once.
func (p RegisterParams) Validate() error {
	var c fieldCollector
	if n := runeLen(strings.TrimSpace(p.Name)); n < 1 || n > 50 {
		c.add("name", "must be between 1 and 50 characters")
	}
	if !validEmail(p.Email) {
		c.add("email", "must be a valid email")
	}
	if msg := validPassword(p.Password); msg != "" {
		c.add("password", msg)
	}
	if _, err := parseDate(p.DateOfBirth); err != nil {
		c.add("dateOfBirth", "must be a valid date")
	}
	return c.err()
}

// Register creates a new user. The plaintext password is hashed with bcrypt
// and never stored. A taken email yields common.ErrorConflict.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (*models.User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	dob, err := parseDate(p.DateOfBirth)
	if err != nil {
		return nil, common.NewValidationError(common.FieldError{Field: "dateOfBirth", Message: "must be a valid date"})
	}

	user := &models.User{
		Name:         strings.TrimSpace(p.Name),
		Email:        NormalizeEmail(p.Email),
		PasswordHash: string(hash),
		DateOfBirth:  dob,
		Role:         models.RoleUser,
	}

	repo := s.repomanager.Users(s.db)
	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return created, nil
}

// Login verifies the credentials and, on success, returns the user and a new
// token pair. Unknown email and wrong password are indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, fmt.Errorf("searching user: %w", err)
	}

	if !VerifyPassword(user, password) {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// GetByID returns the user for an already-authenticated identity.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// UpdateProfileParams carries the optional profile changes. Nil fields stay
// untouched.
type UpdateProfileParams struct {
	Name  *string
	Email *string
}

func (p UpdateProfileParams) Validate() error {
	var c fieldCollector
	if p.Name != nil {
		if n := runeLen(strings.TrimSpace(*p.Name)); n < 1 || n > 50 {
			c.add("name", "must be between 1 and 50 characters")
		}
	}
	if p.Email != nil && !validEmail(*p.Email) {
		c.add("email", "must be a valid email")
	}
	return c.err()
}

// UpdateProfile applies the supplied profile changes. A new email that is
// already taken by another user yields common.ErrorConflict.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, p UpdateProfileParams) (*models.User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	current, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch := users.ProfilePatch{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		patch.Name = &name
	}
	if p.Email != nil {
		email := NormalizeEmail(*p.Email)
		if email != current.Email {
			if _, err := repo.GetByEmail(ctx, email); err == nil {
				return nil, common.ErrorConflict
			} else if !errors.Is(err, common.ErrorNotFound) {
				return nil, err
			}
			patch.Email = &email
		}
	}

	if patch.Name == nil && patch.Email == nil {
		return current, nil
	}

	return repo.UpdateProfile(ctx, userID, patch)
}

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VerifyPassword compares candidate against the stored bcrypt hash.
func VerifyPassword(user *models.User, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(candidate)) == nil
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
