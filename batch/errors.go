package batch

import "errors"

var (
	// ErrNoRequests indicates an empty request set
	ErrNoRequests = errors.New("no requests to submit")

	// ErrEmptyCustomID indicates a request without a correlation id
	ErrEmptyCustomID = errors.New("request custom_id is empty")

	// ErrDuplicateCustomID indicates two requests share a correlation id
	ErrDuplicateCustomID = errors.New("duplicate request custom_id")

	// ErrNotFinished is returned when results are requested before the job is terminal
	ErrNotFinished = errors.New("batch job has not finished")

	// ErrNoOutput indicates a finished job without an output file
	ErrNoOutput = errors.New("batch job has no output file")

	// ErrJobFailed is returned by Wait when the job ends in a state other than completed
	ErrJobFailed = errors.New("batch job did not complete")
)
