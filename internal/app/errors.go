package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrNotStarted           = errors.New("service not started")
	ErrDeterminismViolation = errors.New("projection is not deterministic")
	ErrBatchTooLarge        = errors.New("batch too large")
	ErrEmptyBatch           = errors.New("empty batch")
)
