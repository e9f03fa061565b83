package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "date_of_birth", "avatar_key",
		"role", "reset_token_hash", "reset_token_expires_at", "created_at", "updated_at",
	}).AddRow(u.ID, u.Name, u.Email, u.PasswordHash, u.DateOfBirth, u.AvatarKey,
		u.Role, u.ResetTokenHash, u.ResetTokenExpiry, u.CreatedAt, u.UpdatedAt)
}

func sampleUser() *models.User {
	return &models.User{
		ID:           "u-1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$hash",
		DateOfBirth:  time.Date(1990, 5, 2, 0, 0, 0, 0, time.UTC),
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\s*\(id, name, email, password_hash, date_of_birth, role\)`).
		WithArgs(sqlmock.AnyArg(), u.Name, u.Email, u.PasswordHash, u.DateOfBirth, u.Role).
		WillReturnRows(userRows(u))

	got, err := repo.Create(context.Background(), &models.User{
		Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash,
		DateOfBirth: u.DateOfBirth, Role: u.Role,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.Email != "alice@example.com" || got.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	u := sampleUser()
	_, err := repo.Create(context.Background(), u)
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("expected ErrorConflict, got %v", err)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE email = \$1`).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUpdateProfile_BuildsPartialSet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	u.Name = "Alice B"

	name := "Alice B"
	mock.ExpectQuery(`(?s)^UPDATE users SET updated_at = now\(\), name = \$1 WHERE id = \$2`).
		WithArgs(name, "u-1").
		WillReturnRows(userRows(u))

	got, err := repo.UpdateProfile(context.Background(), "u-1", ProfilePatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if got.Name != "Alice B" {
		t.Fatalf("unexpected name: %q", got.Name)
	}
}

func TestUpdateProfile_EmailConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	email := "taken@example.com"
	mock.ExpectQuery(`(?s)^UPDATE users SET`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.UpdateProfile(context.Background(), "u-1", ProfilePatch{Email: &email})
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("expected ErrorConflict, got %v", err)
	}
}

func TestSetResetToken_MissingUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE users SET reset_token_hash = \$1`).
		WithArgs("hash", sqlmock.AnyArg(), "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetResetToken(context.Background(), "nope", "hash", time.Now())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestConsumeResetToken_NoMatch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^UPDATE users\s+SET password_hash = \$1, reset_token_hash = NULL`).
		WithArgs("newhash", "tokenhash", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ConsumeResetToken(context.Background(), "tokenhash", "newhash", time.Now())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestConsumeResetToken_ClearsPendingReset(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectQuery(`(?s)^UPDATE users\s+SET password_hash = \$1, reset_token_hash = NULL, reset_token_expires_at = NULL`).
		WithArgs("newhash", "tokenhash", sqlmock.AnyArg()).
		WillReturnRows(userRows(u))

	got, err := repo.ConsumeResetToken(context.Background(), "tokenhash", "newhash", time.Now())
	if err != nil {
		t.Fatalf("ConsumeResetToken error: %v", err)
	}
	if got.ResetTokenHash != nil {
		t.Fatalf("expected cleared reset token, got %+v", got.ResetTokenHash)
	}
}
