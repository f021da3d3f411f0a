package monitor

import "errors"

var (
	// ErrAlreadyRunning rejects a trigger that arrives while an analysis run
	// is in flight. Requests are never queued; the caller retries later.
	ErrAlreadyRunning = errors.New("a drift analysis run is already in progress")

	// ErrInsufficientData skips a cycle whose snapshot is below the minimum
	// sample gate. Expected during warm-up, not a failure.
	ErrInsufficientData = errors.New("not enough production data for drift analysis")
)
