package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// ErrNoReply is returned when feedback is requested for an email that has
	// no saved agent reply.
	ErrNoReply = errors.New("no agent reply")

	// ErrOracle marks a surfaced generation failure (reply drafting, feedback).
	// Classification never returns it; it degrades instead.
	ErrOracle = errors.New("oracle failure")

	// ErrNotModified is returned when a write matched no record after the
	// record was successfully loaded.
	ErrNotModified = errors.New("record not modified")
)
