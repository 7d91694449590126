package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrDeadlineRequired indicates no deadline was chosen.
	ErrDeadlineRequired = errors.New("Please select deadline")

	// ErrDeadlineInPast indicates the deadline is strictly before now.
	ErrDeadlineInPast = errors.New("Deadline must be today or later")

	// ErrGenerationFailed is wrapped by every terminal workflow failure.
	ErrGenerationFailed = errors.New("failed to generate plan")

	// ErrUnexpectedShape indicates the backend answered with neither a plan
	// nor the not-ready code. It is not retried.
	ErrUnexpectedShape = fmt.Errorf("%w: unexpected response shape", ErrGenerationFailed)

	// ErrRetriesExhausted indicates every attempt was used without a plan.
	ErrRetriesExhausted = fmt.Errorf("%w: retry attempts exhausted", ErrGenerationFailed)
)
