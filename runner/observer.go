package runner

import "github.com/poiesic/lexcorpus/core"

// Observer provides hooks into a run. Implementations must be safe for
// concurrent use when the runner is configured with Concurrency > 1.
type Observer interface {
	ItemSkipped(task string)
	ItemRetried(task string, err error)
	ItemCommitted(task string, status core.RecordStatus)
	RunFinished(task string, summary *Summary)
}

// noopObserver is a no-op implementation of Observer
type noopObserver struct{}

var _ Observer = (*noopObserver)(nil)

func (noopObserver) ItemSkipped(_ string)                        {}
func (noopObserver) ItemRetried(_ string, _ error)               {}
func (noopObserver) ItemCommitted(_ string, _ core.RecordStatus) {}
func (noopObserver) RunFinished(_ string, _ *Summary)            {}
