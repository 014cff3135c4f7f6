package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyCheckedIn rejects a check-in while the user holds an open
	// presence somewhere.
	ErrAlreadyCheckedIn = errors.New("already checked in at a park")

	// ErrEventOver rejects writes against a play date that is cancelled,
	// completed, or past its end time.
	ErrEventOver = errors.New("play date is no longer active")

	// Friend request pre-validation outcomes, one per existing-record status.
	ErrRequestPending  = errors.New("friend request already pending")
	ErrAlreadyFriends  = errors.New("already friends")
	ErrRequestDeclined = errors.New("friend request was declined")
)
