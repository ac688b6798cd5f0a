package service

import "errors"

var (
	ErrSubmissionInProgress = errors.New("a donation is already being submitted")
	ErrUnmounted            = errors.New("donation workflow is no longer active")
	ErrNoOrder              = errors.New("no donation order to check")
	ErrReceiptUnavailable   = errors.New("receipt is not available yet")
)
