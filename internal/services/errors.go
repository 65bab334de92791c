// internal/services/errors.go
package services

import "errors"

var (
	// ErrJobNotFound is returned when a job id does not exist.
	ErrJobNotFound = errors.New("search job not found")

	// ErrJobTerminal is returned on attempts to transition a job that has
	// already reached a terminal state.
	ErrJobTerminal = errors.New("search job is already in a terminal state")

	// ErrJobNotClaimable is returned by a claim attempt on a job that is
	// no longer pending. Workers treat it as a clean no-op.
	ErrJobNotClaimable = errors.New("search job is not pending")

	// ErrSearchCancelled reports cooperative cancellation. It accompanies
	// the partial result; it is not a failure.
	ErrSearchCancelled = errors.New("search cancelled")

	// ErrNoMaterials is returned when a project has no materials to
	// derive search terms from.
	ErrNoMaterials = errors.New("no materials found for project")
)
