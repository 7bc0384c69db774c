package pipeline

import (
	"context"

	clientpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/client"
)

// StatusOptions configures a status run.
type StatusOptions struct {
	// Selector filters the containers inspected. A zero selector inspects
	// every container in the database.
	Selector Selector
	// Detailed additionally fetches partition key path and throughput.
	Detailed bool
}

// ContainerStatus is one container's row in a status report.
type ContainerStatus struct {
	Name             string
	ItemCount        int64
	PartitionKeyPath string
	Throughput       *int32

	// Err marks a container whose stats could not be read. The run
	// continues past it.
	Err error
}

// StatusReport summarizes every inspected container.
type StatusReport struct {
	Database   string
	Containers []ContainerStatus
}

// TotalItems sums the item counts of containers that could be read.
func (r *StatusReport) TotalItems() int64 {
	var total int64
	for _, cs := range r.Containers {
		if cs.Err == nil {
			total += cs.ItemCount
		}
	}
	return total
}

// EmptyContainers lists readable containers with zero items.
func (r *StatusReport) EmptyContainers() []string {
	var names []string
	for _, cs := range r.Containers {
		if cs.Err == nil && cs.ItemCount == 0 {
			names = append(names, cs.Name)
		}
	}
	return names
}

// MissingPartitionKey lists readable containers that declare no partition key
// path. Items in them cannot be routed deterministically on re-upload.
func (r *StatusReport) MissingPartitionKey() []string {
	var names []string
	for _, cs := range r.Containers {
		if cs.Err == nil && cs.PartitionKeyPath == "" {
			names = append(names, cs.Name)
		}
	}
	return names
}

// FailedContainers lists containers whose stats read failed.
func (r *StatusReport) FailedContainers() []string {
	var names []string
	for _, cs := range r.Containers {
		if cs.Err != nil {
			names = append(names, cs.Name)
		}
	}
	return names
}

// Status reports item counts (and, when detailed, partition key and
// throughput) for the selected containers. A container that errors
// individually is recorded as a failed entry; the run is aborted only when
// the container list itself cannot be resolved.
func Status(ctx context.Context, c clientpkg.Interface, database string, opts StatusOptions) (*StatusReport, error) {
	available, err := c.ListContainers(ctx)
	if err != nil {
		return nil, err
	}
	selected := available
	if !opts.Selector.IsZero() {
		selected, err = opts.Selector.resolve(available)
		if err != nil {
			return nil, err
		}
	}

	report := &StatusReport{Database: database}
	for _, cont := range selected {
		status := ContainerStatus{Name: cont.Name, PartitionKeyPath: cont.PartitionKeyPath}
		count, err := c.CountItems(ctx, cont.Name)
		if err != nil {
			status.Err = err
			report.Containers = append(report.Containers, status)
			continue
		}
		status.ItemCount = count
		if opts.Detailed {
			desc, err := c.ReadContainer(ctx, cont.Name)
			if err != nil {
				status.Err = err
				report.Containers = append(report.Containers, status)
				continue
			}
			status.PartitionKeyPath = desc.PartitionKeyPath
			status.Throughput = desc.Throughput
		}
		report.Containers = append(report.Containers, status)
	}
	return report, nil
}
