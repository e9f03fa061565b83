package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type forgotPasswordRequest struct {
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth"`
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r, w, err)
		return
	}

	secret, err := s.passwords.Forgot(r.Context(), services.ForgotParams{
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	// Demo shortcut: the secret goes back in the response. A production
	// deployment delivers it out-of-band instead.
	s.writeSuccess(w, http.StatusOK, "Password reset token generated successfully", map[string]any{
		"resetToken": secret,
	})
}

func (s *Server) handleVerifyDateOfBirth(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r, w, err)
		return
	}

	match, err := s.passwords.VerifyDateOfBirth(r.Context(), services.ForgotParams{
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	message := "Date of birth does not match"
	if match {
		message = "Date of birth verified successfully"
	}
	s.writeSuccess(w, http.StatusOK, message, map[string]any{
		"isMatch": match,
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r, w, err)
		return
	}

	if err := s.passwords.Reset(r.Context(), services.ResetParams{
		Token:    req.Token,
		Password: req.Password,
	}); err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Password reset successfully. You can now login with your new password.", nil)
}
