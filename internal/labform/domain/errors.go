package domain

import "errors"

var (
	ErrNotFound      = errors.New("not_found")
	ErrInvalidID     = errors.New("invalid_id")
	ErrMalformedBody = errors.New("malformed_body")
	ErrCast          = errors.New("cast_error")
)
