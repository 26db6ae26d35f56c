package repository

import "errors"

// Sentinel errors shared by all repositories.
var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicateRoom means a test already exists for the room number.
	ErrDuplicateRoom = errors.New("room number already in use")
	// ErrDuplicateSubmission means a submission already exists for the
	// (test, reg_no) pair. Raised by the storage constraint, never by a
	// find-then-insert check.
	ErrDuplicateSubmission = errors.New("submission already exists for this registration number")
)
