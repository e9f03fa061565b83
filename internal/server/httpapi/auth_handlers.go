package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dateOfBirth"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r, w, err)
		return
	}

	user, err := s.users.Register(r.Context(), services.RegisterParams{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "email", user.Email)
	s.writeSuccess(w, http.StatusCreated, "User registered successfully", map[string]any{
		"user": user.Public(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r, w, err)
		return
	}

	user, pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Login successful", map[string]any{
		"user":         user.Public(),
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r, w, err)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Token refreshed", map[string]any{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "", map[string]any{
		"user": user.Public(),
	})
}
