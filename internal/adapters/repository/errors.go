package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNoData       = errors.New("no match data")
	ErrLoad         = errors.New("load match data failed")
	ErrMissingField = errors.New("required column missing")
)
