package models

import "time"

// RefreshToken is a server-stored opaque token allowing a client to obtain
// a new access token. Rotated on every use.
type RefreshToken struct {
	Token   string
	UserID  string
	Expires time.Time
}
