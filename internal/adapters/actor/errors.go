package actor

import "errors"

// Sentinel kinds for actor errors.
var (
	ErrNoDocument    = errors.New("no document stored")
	ErrUnknownHandle = errors.New("unknown actor handle")
)
