package models

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the stored credential record. PasswordHash and the reset-token
// fields never leave the server; external responses use PublicUser.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	DateOfBirth      time.Time
	AvatarKey        *string
	Role             string
	ResetTokenHash   *string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PublicUser is the externally visible projection of a User. Sensitive
// fields are absent from the type itself rather than stripped at call sites.
type PublicUser struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	DateOfBirth string    `json:"dateOfBirth"`
	Role        string    `json:"role"`
	HasAvatar   bool      `json:"hasAvatar"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Public returns the external projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		DateOfBirth: u.DateOfBirth.UTC().Format("2006-01-02"),
		Role:        u.Role,
		HasAvatar:   u.AvatarKey != nil,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
