package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "", map[string]any{
		"user": user.Public(),
	})
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r, w, err)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), userIDFromContext(r.Context()), services.UpdateProfileParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Profile updated successfully", map[string]any{
		"user": user.Public(),
	})
}

func (s *Server) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.avatars.RequestUpload(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Upload URL issued", map[string]any{
		"key":       key,
		"uploadUrl": url,
	})
}

type confirmAvatarRequest struct {
	Key string `json:"key"`
}

func (s *Server) handleAvatarConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmAvatarRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r, w, err)
		return
	}

	if err := s.avatars.Confirm(r.Context(), userIDFromContext(r.Context()), req.Key); err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Avatar updated successfully", nil)
}

func (s *Server) handleAvatarDownload(w http.ResponseWriter, r *http.Request) {
	url, err := s.avatars.DownloadURL(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "", map[string]any{
		"downloadUrl": url,
	})
}
