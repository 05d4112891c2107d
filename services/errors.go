package services

import (
	"errors"
	"fmt"

	"duopet-backend/repositories"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenCategory  = fmt.Errorf("%w: unexpected token category", ErrInvalidToken)
	ErrTokenExpired   = errors.New("token expired")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = repositories.ErrNotFound
	ErrConflict       = errors.New("conflict")
	ErrSessionExpired = errors.New("session expired")
	ErrInternal       = errors.New("internal error")
)
