package executor

import (
	"sort"

	"pipejob/internal/archive"
)

// Accumulator tracks the files a job (or a single task) has consumed and
// produced, plus transfers deferred to end of job. Each worker returns its
// own partial accumulator; only the result aggregator, under the group lock,
// merges partials into the job-wide instance.
type Accumulator struct {
	Inputs  map[string]struct{}
	Outputs map[string]struct{}
	Pending map[string]archive.TransferItem

	// Preexisting holds base names of files already present in the job
	// scratch area before any task ran; the junk sweep leaves them alone.
	Preexisting map[string]struct{}
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		Inputs:      make(map[string]struct{}),
		Outputs:     make(map[string]struct{}),
		Pending:     make(map[string]archive.TransferItem),
		Preexisting: make(map[string]struct{}),
	}
}

func (a *Accumulator) AddPreexisting(base string) {
	if base != "" {
		a.Preexisting[base] = struct{}{}
	}
}

func (a *Accumulator) AddInput(path string) {
	if path != "" {
		a.Inputs[path] = struct{}{}
	}
}

func (a *Accumulator) AddOutput(path string) {
	if path != "" {
		a.Outputs[path] = struct{}{}
	}
}

// QueueTransfer records a file for later archive transfer. A later entry for
// the same key overwrites the earlier one.
func (a *Accumulator) QueueTransfer(key string, item archive.TransferItem) {
	a.Pending[key] = item
}

// Merge folds a partial accumulator into this one: union of inputs, union of
// outputs, union/overwrite of pending transfers.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	for k := range other.Inputs {
		a.Inputs[k] = struct{}{}
	}
	for k := range other.Outputs {
		a.Outputs[k] = struct{}{}
	}
	for k, v := range other.Pending {
		a.Pending[k] = v
	}
	for k := range other.Preexisting {
		a.Preexisting[k] = struct{}{}
	}
}

// InputList returns the input paths in sorted order.
func (a *Accumulator) InputList() []string { return sortedKeys(a.Inputs) }

// OutputList returns the output paths in sorted order.
func (a *Accumulator) OutputList() []string { return sortedKeys(a.Outputs) }

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
