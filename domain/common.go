package domain

import (
	"errors"
)

const (
	RoleAdmin     = "admin"
	RoleRecipient = "recipient"
	RoleDonor     = "donor"
)

var (
	MesaageUserNotAllowed       = "user not allowed"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"
	MessageGenericFailure       = "something went wrong, please try again"

	ErrParseUUID      = errors.New("failed to parse UUID")
	ErrUserNotAllowed = errors.New("user not allowed")
	ErrTokenNotFound  = errors.New("failed to token not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Session is the caller identity resolved from the bearer token. It is passed
// explicitly to services instead of being read from request state.
type Session struct {
	UserID string
	Role   string
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) Authenticated() bool {
	return s.UserID != ""
}
