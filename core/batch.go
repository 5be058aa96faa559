package core

import "time"

// BatchStatus is the lifecycle state of a bulk job as reported by the service.
type BatchStatus string

const (
	BatchValidating BatchStatus = "validating"
	BatchInProgress BatchStatus = "in_progress"
	BatchFinalizing BatchStatus = "finalizing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
	BatchExpired    BatchStatus = "expired"
	BatchCancelling BatchStatus = "cancelling"
	BatchCancelled  BatchStatus = "cancelled"
)

// Terminal reports whether no further transitions are expected.
func (s BatchStatus) Terminal() bool {
	switch s {
	case BatchCompleted, BatchFailed, BatchExpired, BatchCancelled:
		return true
	}
	return false
}

// BatchJob is a snapshot of a bulk job. Transitions are driven by the service;
// a BatchJob is only ever observed, never advanced locally.
type BatchJob struct {
	ID        string
	Status    BatchStatus
	InputRef  string
	OutputRef string // set once the job has completed
	ErrorRef  string // set when some or all requests failed
	CreatedAt time.Time

	Total     int
	Completed int
	Failed    int
}
