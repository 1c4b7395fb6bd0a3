package gap

import (
	"io"
	"time"
)

// RunStatus is the lifecycle state of a gap analysis run.
type RunStatus string

// Run states. Only running runs change.
const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
	RunFailed    RunStatus = "failed"
)

// Finished reports whether the run reached a terminal state.
func (s RunStatus) Finished() bool { return s != RunRunning }

// RunParams are the inputs a run was started with.
type RunParams struct {
	Variant       Variant `json:"variant"`
	Source        string  `json:"source"`
	Collection    string  `json:"collection"`
	Depth         Depth   `json:"depth"`
	MinSimilarity float64 `json:"minSimilarity"`
	FunnelFocus   string  `json:"funnelFocus,omitempty"`
	IndustryFocus string  `json:"industryFocus,omitempty"`
}

// Run is a gap analysis executed in the background. Gaps grow batch by batch
// and stay ordered by priority.
type Run struct {
	ID     string    `json:"id"`
	Params RunParams `json:"params"`
	Status RunStatus `json:"status"`
	Error  string    `json:"error,omitempty"`

	Combinations  int   `json:"combinations"`
	Analyzed      int   `json:"analyzed"`
	Batches       int   `json:"batches"`
	BatchesDone   int   `json:"batchesDone"`
	FailedBatches []int `json:"failedBatches"`

	Gaps  []Gap `json:"gaps"`
	Stats Stats `json:"stats"`

	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// WriteCSV exports the run's gaps in the format of its variant.
func (r *Run) WriteCSV(w io.Writer) error {
	if r.Params.Variant == VariantFunnel {
		return WriteFunnelCSV(w, r.Gaps)
	}
	return WriteCSV(w, r.Gaps)
}
