package services

import "errors"

// Report service errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidScope = errors.New("invalid records scope")
)
