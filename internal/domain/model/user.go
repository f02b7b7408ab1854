//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxUserNameLen = 255

// User is an account created on first successful identity-provider exchange.
// Records are immutable after creation; there is no update or delete path.
type User struct {
	ID         string    `json:"id"                   db:"id"`
	ExternalID string    `json:"external_id"          db:"external_id"`
	Email      string    `json:"email"                db:"email"`
	Name       string    `json:"name"                 db:"name"`
	AvatarURL  *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"           db:"created_at"`
}

// NewUserRequest represents parameters to find-or-create a User from a
// verified provider identity.
type NewUserRequest struct {
	ExternalID string  `json:"external_id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
}

// Validate validates NewUserRequest.
func (r *NewUserRequest) Validate() error {
	if strings.TrimSpace(r.ExternalID) == "" {
		return errors.New("external_id is required and cannot be empty")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required and cannot be empty")
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxUserNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	return nil
}
