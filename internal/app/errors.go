package service

import "errors"

// Sentinel kinds for coordinator errors. The HTTP layer maps these to
// status codes with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)
