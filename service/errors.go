package service

import "errors"

var ErrNotFound = errors.New("not found")
var ErrInvalidRequest = errors.New("invalid request")

// ErrUnknownModel and ErrUnknownLanguage are both ErrNotFound.
var (
	ErrUnknownModel    error = sentinelError{msg: "unknown model", sentinel: ErrNotFound}
	ErrUnknownLanguage error = sentinelError{msg: "unknown language", sentinel: ErrNotFound}
)

type sentinelError struct {
	msg      string
	sentinel error
}

func (e sentinelError) Error() string {
	return e.msg
}

func (e sentinelError) Unwrap() error {
	return e.sentinel
}

func wrapSentinel(msg string, sentinel error) error {
	return sentinelError{msg: msg, sentinel: sentinel}
}
