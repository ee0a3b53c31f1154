package models

import (
	"encoding/json"
	"time"
)

// SelfUsername is the reserved username that always refers to the caller.
// It can never be registered and user routes accept it as a path id.
const SelfUsername = "me"

// User represents a registered account
type User struct {
	ID           int
	Username     string
	PasswordHash string // Never serialized; bcrypt digest with embedded salt
	Avatar       *string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserInfo is the safe projection of a User returned to clients
// (no password hash)
type UserInfo struct {
	Username  string  `json:"username"`
	Avatar    *string `json:"avatar"`
	IsAdmin   bool    `json:"is_admin"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// SafeInfo converts a User to its safe projection
func (u *User) SafeInfo() UserInfo {
	return UserInfo{
		Username:  u.Username,
		Avatar:    u.Avatar,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserUpdateRequest is a partial update of a user. Omitted fields are left
// untouched; an explicit null avatar clears the stored avatar.
type UserUpdateRequest struct {
	Password  *string
	Avatar    *string
	AvatarSet bool
	IsAdmin   *bool
}

// UnmarshalJSON records which fields were present in the request body so the
// update can distinguish "omitted" from "set to null".
func (r *UserUpdateRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		Password *string `json:"password"`
		Avatar   *string `json:"avatar"`
		IsAdmin  *bool   `json:"is_admin"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	r.Password = raw.Password
	r.Avatar = raw.Avatar
	_, r.AvatarSet = fields["avatar"]
	r.IsAdmin = raw.IsAdmin
	return nil
}

// UserPatch carries the resolved column changes for a partial user update
type UserPatch struct {
	PasswordHash *string
	Avatar       *string
	AvatarSet    bool
	IsAdmin      *bool
}

// Empty reports whether the patch would change nothing
func (p *UserPatch) Empty() bool {
	return p.PasswordHash == nil && !p.AvatarSet && p.IsAdmin == nil
}
