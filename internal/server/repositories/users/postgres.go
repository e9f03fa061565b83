package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, name, email, password_hash, date_of_birth, avatar_key, role,
	reset_token_hash, reset_token_expires_at, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.DateOfBirth,
		&u.AvatarKey, &u.Role, &u.ResetTokenHash, &u.ResetTokenExpiry,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// isUniqueViolation matches the Postgres unique_violation error code.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.NewString()

	query := `INSERT INTO users (id, name, email, password_hash, date_of_birth, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.DateOfBirth, user.Role)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*models.User, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	if patch.Name != nil {
		args = append(args, *patch.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.Email != nil {
		args = append(args, *patch.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, id string, tokenHash string, expiry time.Time) error {
	query := `UPDATE users SET reset_token_hash = $1, reset_token_expires_at = $2, updated_at = now()
		 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, tokenHash, expiry, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, tokenHash string, passwordHash string, now time.Time) (*models.User, error) {
	// One statement: the password change and the token clear are atomic,
	// and an expired token simply never matches.
	query := `UPDATE users
		 SET password_hash = $1, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		 WHERE reset_token_hash = $2 AND reset_token_expires_at > $3
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, passwordHash, tokenHash, now))
}

func (r *PostgresRepository) SetAvatarKey(ctx context.Context, id string, key string) error {
	query := `UPDATE users SET avatar_key = $1, updated_at = now() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
