package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrBatchAlreadyActive = errors.New("a batch is already active")
	ErrBatchNotActive     = errors.New("batch is not active")
	ErrUnknownContact     = errors.New("unknown contact")
	ErrBatchRunning       = errors.New("batch is already running")
)
