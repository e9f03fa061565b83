// Package httpapi exposes the JSON REST boundary. Handlers decode and
// forward to the services; every domain error is translated to a structured
// failure response here and nowhere else.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// UserService is the subset of the user service the handlers need.
type UserService interface {
	Register(ctx context.Context, p services.RegisterParams) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, p services.UpdateProfileParams) (*models.User, error)
}

// PasswordService drives the password-reset flow.
type PasswordService interface {
	Forgot(ctx context.Context, p services.ForgotParams) (string, error)
	VerifyDateOfBirth(ctx context.Context, p services.ForgotParams) (bool, error)
	Reset(ctx context.Context, p services.ResetParams) error
}

// TaskService covers ownership-scoped task operations.
type TaskService interface {
	Create(ctx context.Context, owner string, p services.CreateTaskParams) (*models.Task, error)
	Get(ctx context.Context, owner string, id string) (*models.Task, error)
	Update(ctx context.Context, owner string, id string, p services.UpdateTaskParams) (*models.Task, error)
	Delete(ctx context.Context, owner string, id string) error
	List(ctx context.Context, owner string, p services.ListTaskParams) (*services.TaskPage, error)
}

// AvatarService covers the presigned avatar storage flow.
type AvatarService interface {
	RequestUpload(ctx context.Context, userID string) (string, string, error)
	Confirm(ctx context.Context, userID string, key string) error
	DownloadURL(ctx context.Context, userID string) (string, error)
}

type Server struct {
	address    string
	logger     logging.Logger
	users      UserService
	passwords  PasswordService
	tasks      TaskService
	avatars    AvatarService
	jwtSecret  []byte
	corsOrigin string
}

func NewServer(address string, l logging.Logger, us UserService, ps PasswordService,
	ts TaskService, as AvatarService, secretKey string, corsOrigin string) *Server {
	return &Server{
		address:    address,
		logger:     l.With("module", "httpapi"),
		users:      us,
		passwords:  ps,
		tasks:      ts,
		avatars:    as,
		jwtSecret:  []byte(secretKey),
		corsOrigin: corsOrigin,
	}
}

// Handler builds the route table. Registration, login, refresh, and the
// password-reset endpoints are intentionally unauthenticated; everything
// else goes through requireAuth.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.Handle("GET /api/auth/me", s.requireAuth(s.handleMe))

	mux.Handle("GET /api/users/profile", s.requireAuth(s.handleGetProfile))
	mux.Handle("PUT /api/users/profile", s.requireAuth(s.handleUpdateProfile))
	mux.Handle("POST /api/users/avatar", s.requireAuth(s.handleAvatarUpload))
	mux.Handle("PUT /api/users/avatar", s.requireAuth(s.handleAvatarConfirm))
	mux.Handle("GET /api/users/avatar", s.requireAuth(s.handleAvatarDownload))

	mux.HandleFunc("POST /api/password/forgot", s.handleForgotPassword)
	mux.HandleFunc("POST /api/password/verify-dob", s.handleVerifyDateOfBirth)
	mux.HandleFunc("PUT /api/password/reset", s.handleResetPassword)

	mux.Handle("GET /api/tasks", s.requireAuth(s.handleListTasks))
	mux.Handle("POST /api/tasks", s.requireAuth(s.handleCreateTask))
	mux.Handle("GET /api/tasks/{id}", s.requireAuth(s.handleGetTask))
	mux.Handle("PUT /api/tasks/{id}", s.requireAuth(s.handleUpdateTask))
	mux.Handle("DELETE /api/tasks/{id}", s.requireAuth(s.handleDeleteTask))

	return s.corsMiddleware(s.loggingMiddleware(mux))
}

// Run serves the API until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeSuccess(w, http.StatusOK, "Backend is running", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
