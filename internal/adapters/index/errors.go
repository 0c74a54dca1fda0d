package index

import "errors"

// Sentinel kinds for index errors.
var (
	ErrNotFound         = errors.New("mapping not found")
	ErrDuplicateMapping = errors.New("mapping already exists")
)
