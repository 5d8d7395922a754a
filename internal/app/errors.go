package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotReady        = errors.New("ratings not loaded")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoSource        = errors.New("no match source configured")
)
