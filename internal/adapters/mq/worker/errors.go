package worker

import "errors"

// ErrJobPanicked marks a job that panicked instead of returning.
var ErrJobPanicked = errors.New("job panicked")
