package health

import "errors"

var (
	// ErrCheckFailed marks a check whose probe itself reported failure.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that did not finish before the
	// aggregator's deadline.
	ErrCheckTimeout = errors.New("health: check timed out")

	// ErrCheckerNotFound is returned when a named checker is not
	// registered.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
