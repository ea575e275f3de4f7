package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrDuplicate is returned by OpportunityStore.Insert when the identity hash
// already exists. The gate swallows it as a benign race.
var ErrDuplicate = errors.New("opportunity already exists")

// ErrUnparseable is returned by a Judge when the response text contains no
// recognizable score. Fusion substitutes the neutral base score.
var ErrUnparseable = errors.New("no score found in judge response")

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
