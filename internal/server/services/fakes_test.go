package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

// fakeRepoManager hands out the same fakes for any handle, transactional
// or not.
type fakeRepoManager struct {
	users   users.Repository
	tasks   tasks.Repository
	refresh refreshtokens.Repository
}

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository                 { return m.tasks }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }

// memUsersRepo is an in-memory users.Repository with real state, so the
// reset-flow tests can observe mutations.
type memUsersRepo struct {
	users []*models.User

	// When set, GetByEmail fails with this instead of consulting users.
	getByEmailErr error
}

var _ users.Repository = (*memUsersRepo)(nil)

func (r *memUsersRepo) add(u *models.User) { r.users = append(r.users, u) }

func (r *memUsersRepo) byID(id string) *models.User {
	for _, u := range r.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (r *memUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, common.ErrorConflict
		}
	}
	user.ID = fmt.Sprintf("u-%d", len(r.users)+1)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.add(user)
	return user, nil
}

func (r *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u := r.byID(id); u != nil {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.getByEmailErr != nil {
		return nil, r.getByEmailErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) UpdateProfile(ctx context.Context, id string, patch users.ProfilePatch) (*models.User, error) {
	u := r.byID(id)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	return u, nil
}

func (r *memUsersRepo) SetResetToken(ctx context.Context, id string, tokenHash string, expiry time.Time) error {
	u := r.byID(id)
	if u == nil {
		return common.ErrorNotFound
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpiry = &expiry
	return nil
}

func (r *memUsersRepo) ConsumeResetToken(ctx context.Context, tokenHash string, passwordHash string, now time.Time) (*models.User, error) {
	for _, u := range r.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash && u.ResetTokenExpiry.After(now) {
			u.PasswordHash = passwordHash
			u.ResetTokenHash = nil
			u.ResetTokenExpiry = nil
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) SetAvatarKey(ctx context.Context, id string, key string) error {
	u := r.byID(id)
	if u == nil {
		return common.ErrorNotFound
	}
	u.AvatarKey = &key
	return nil
}

// fakeTasksRepo records the arguments it was called with and returns canned
// results.
type fakeTasksRepo struct {
	created    *models.Task
	createErr  error
	stored     *models.Task
	updateErr  error
	deleteErr  error
	listOwner  string
	listFilter tasks.Filter
	listOut    []*models.Task
	listTotal  int
	listErr    error
}

var _ tasks.Repository = (*fakeTasksRepo)(nil)

func (f *fakeTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	task.ID = "t-1"
	f.created = task
	return task, nil
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, owner string, id string) (*models.Task, error) {
	if f.stored != nil && f.stored.ID == id && f.stored.UserID == owner {
		return f.stored, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTasksRepo) Update(ctx context.Context, owner string, id string, patch tasks.Patch) (*models.Task, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.stored == nil || f.stored.ID != id || f.stored.UserID != owner {
		return nil, common.ErrorNotFound
	}
	if patch.Title != nil {
		f.stored.Title = *patch.Title
	}
	if patch.Description != nil {
		f.stored.Description = *patch.Description
	}
	if patch.Status != nil {
		f.stored.Status = *patch.Status
	}
	if patch.Priority != nil {
		f.stored.Priority = patch.Priority
	}
	if patch.DueDate != nil {
		f.stored.DueDate = patch.DueDate
	}
	if patch.Tags != nil {
		f.stored.Tags = *patch.Tags
	}
	return f.stored, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, owner string, id string) error {
	return f.deleteErr
}

func (f *fakeTasksRepo) List(ctx context.Context, owner string, filter tasks.Filter) ([]*models.Task, int, error) {
	f.listOwner = owner
	f.listFilter = filter
	return f.listOut, f.listTotal, f.listErr
}

// fakeRefreshRepo records rotation calls.
type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	createdUserID string
	createdToken  string
	createErr     error

	deletedToken string
	deleteErr    error
}

var _ refreshtokens.Repository = (*fakeRefreshRepo)(nil)

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.createdUserID = userID
	f.createdToken = token
	return f.createErr
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.deletedToken = token
	return f.deleteErr
}
