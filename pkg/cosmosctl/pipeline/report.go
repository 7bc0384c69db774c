// Package pipeline implements the dump, upload, status, and database
// maintenance flows on top of the client facade. Pipelines run sequentially,
// tolerate failures at item and container granularity, and return a Report
// describing one invocation.
package pipeline

import (
	"fmt"
	"time"
)

// ItemFailure records one item that could not be written or read.
type ItemFailure struct {
	Container string
	ItemID    string
	Err       error
}

func (f ItemFailure) String() string {
	id := f.ItemID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("[%s] %s: %v", f.Container, id, f.Err)
}

// ContainerStats accumulates per-container counters during a run.
type ContainerStats struct {
	Name    string
	Read    int
	Created int
	Updated int
	Skipped int
	Failed  int

	// items observed without a value for the container's partition key
	// field; tolerated but surfaced in summaries
	MissingPartitionKey int

	// set when the container as a whole failed (schema conflict, missing
	// remotely, read aborted)
	Err error
}

// Report is the result of one pipeline invocation. It is built while the
// pipeline runs and read-only afterwards.
type Report struct {
	Database   string
	Containers []*ContainerStats
	Failures   []ItemFailure
	Elapsed    time.Duration

	started time.Time
}

func newReport(database string) *Report {
	return &Report{Database: database, started: time.Now()}
}

// container returns the stats entry for name, appending one in arrival order
// when absent.
func (r *Report) container(name string) *ContainerStats {
	for _, cs := range r.Containers {
		if cs.Name == name {
			return cs
		}
	}
	cs := &ContainerStats{Name: name}
	r.Containers = append(r.Containers, cs)
	return cs
}

func (r *Report) failItem(container, id string, err error) {
	r.container(container).Failed++
	r.Failures = append(r.Failures, ItemFailure{Container: container, ItemID: id, Err: err})
}

func (r *Report) failContainer(name string, err error) {
	r.container(name).Err = err
}

func (r *Report) finish() *Report {
	r.Elapsed = time.Since(r.started)
	return r
}

// TotalRead sums items read across containers.
func (r *Report) TotalRead() int {
	total := 0
	for _, cs := range r.Containers {
		total += cs.Read
	}
	return total
}

// TotalExported sums items read from containers that completed. Items read
// from a container before it failed never reach the snapshot and are not
// counted.
func (r *Report) TotalExported() int {
	total := 0
	for _, cs := range r.Containers {
		if cs.Err == nil {
			total += cs.Read
		}
	}
	return total
}

// TotalWritten sums created and updated items across containers.
func (r *Report) TotalWritten() int {
	total := 0
	for _, cs := range r.Containers {
		total += cs.Created + cs.Updated
	}
	return total
}

// TotalFailed sums item failures across containers.
func (r *Report) TotalFailed() int {
	total := 0
	for _, cs := range r.Containers {
		total += cs.Failed
	}
	return total
}

// FailedContainers lists containers that failed as a whole, in run order.
func (r *Report) FailedContainers() []string {
	var names []string
	for _, cs := range r.Containers {
		if cs.Err != nil {
			names = append(names, cs.Name)
		}
	}
	return names
}

// SucceededContainers lists containers that completed, in run order.
func (r *Report) SucceededContainers() []string {
	var names []string
	for _, cs := range r.Containers {
		if cs.Err == nil {
			names = append(names, cs.Name)
		}
	}
	return names
}
