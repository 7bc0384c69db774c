package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	clientpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/client"
	snapshotpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/snapshot"
)

// UploadOptions configures an import run.
type UploadOptions struct {
	// Selector filters the snapshot's containers. A zero selector selects
	// every container present in the snapshot.
	Selector Selector
	// BatchSize is the number of items per write batch. Batch size paces
	// writes only; final database state is batch-size invariant.
	BatchSize int
	// Upsert overwrites existing items instead of failing on conflicts.
	Upsert bool
	// DryRun tallies what would be written without touching the database.
	DryRun bool
	// CreateContainers provisions missing containers from the snapshot's
	// descriptors instead of failing them.
	CreateContainers bool
	// Progress receives per-container progress lines. Nil discards them.
	Progress io.Writer
}

// Upload reads a snapshot file and replays it into the database. See
// UploadSnapshot for the replay semantics.
func Upload(ctx context.Context, c clientpkg.Interface, database, input string, opts UploadOptions) (*Report, error) {
	doc, err := snapshotpkg.Read(input)
	if err != nil {
		return nil, err
	}
	return UploadSnapshot(ctx, c, database, doc, opts)
}

// UploadSnapshot replays a decoded snapshot into the database. Containers are
// processed in snapshot order; items within a container keep their snapshot
// order and are written strictly sequentially. One failing item is recorded
// and the run moves to the next item; one failing container (absent remotely,
// partition key mismatch) is recorded and the run moves to the next
// container. There is no rollback of partially applied batches.
func UploadSnapshot(ctx context.Context, c clientpkg.Interface, database string, doc *snapshotpkg.Document, opts UploadOptions) (*Report, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	report := newReport(database)
	selected, err := selectEntries(doc, opts.Selector)
	if err != nil {
		return report.finish(), err
	}

	var remote map[string]clientpkg.Container
	if !opts.DryRun {
		available, err := c.ListContainers(ctx)
		if err != nil {
			return report.finish(), err
		}
		remote = make(map[string]clientpkg.Container, len(available))
		for _, cont := range available {
			remote[cont.Name] = cont
		}
	}

	for i := range selected {
		entry := &selected[i]
		if opts.DryRun {
			stats := report.container(entry.Name)
			stats.Skipped += len(entry.Items)
			fmt.Fprintf(progress, "[%s] dry run: would write %d items\n", entry.Name, len(entry.Items))
			continue
		}
		if err := ensureContainer(ctx, c, entry, remote, opts.CreateContainers, progress); err != nil {
			fmt.Fprintf(progress, "[%s] failed: %v\n", entry.Name, err)
			report.failContainer(entry.Name, err)
			continue
		}
		uploadItems(ctx, c, entry, batchSize, opts.Upsert, progress, report)
	}

	if !opts.DryRun && len(report.SucceededContainers()) == 0 && len(selected) > 0 {
		return report.finish(), errors.New("no containers were successfully processed")
	}
	return report.finish(), nil
}

// selectEntries filters the snapshot's containers by the selector, keeping
// snapshot order. Explicitly requested names missing from the snapshot fail
// with ErrNotFound.
func selectEntries(doc *snapshotpkg.Document, sel Selector) ([]snapshotpkg.ContainerEntry, error) {
	if sel.IsZero() || sel.All {
		return doc.Containers, nil
	}
	present := make(map[string]bool, len(doc.Containers))
	for _, e := range doc.Containers {
		present[e.Name] = true
	}
	var missing []string
	for _, name := range sel.Names {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("snapshot has no containers named %s: %w", strings.Join(missing, ", "), clientpkg.ErrNotFound)
	}
	requested := make(map[string]bool, len(sel.Names))
	for _, name := range sel.Names {
		requested[name] = true
	}
	var selected []snapshotpkg.ContainerEntry
	for _, e := range doc.Containers {
		if requested[e.Name] {
			selected = append(selected, e)
		}
	}
	return selected, nil
}

func ensureContainer(ctx context.Context, c clientpkg.Interface, entry *snapshotpkg.ContainerEntry, remote map[string]clientpkg.Container, create bool, progress io.Writer) error {
	if _, ok := remote[entry.Name]; ok {
		return nil
	}
	if !create {
		return fmt.Errorf("container %s does not exist (use --create-containers): %w", entry.Name, clientpkg.ErrNotFound)
	}
	desc := entry.Descriptor()
	if desc.PartitionKeyPath == "" {
		// Snapshots from sources without a declared partition key fall
		// back to id-partitioning.
		desc.PartitionKeyPath = "/id"
		fmt.Fprintf(progress, "[%s] snapshot carries no partition key path, creating with /id\n", entry.Name)
	}
	if err := c.CreateContainer(ctx, desc); err != nil {
		return err
	}
	fmt.Fprintf(progress, "[%s] created container (partition key %s)\n", entry.Name, desc.PartitionKeyPath)
	remote[entry.Name] = desc
	return nil
}

func uploadItems(ctx context.Context, c clientpkg.Interface, entry *snapshotpkg.ContainerEntry, batchSize int, upsert bool, progress io.Writer, report *Report) {
	stats := report.container(entry.Name)
	if len(entry.Items) == 0 {
		fmt.Fprintf(progress, "[%s] no items to upload\n", entry.Name)
		return
	}
	for start := 0; start < len(entry.Items); start += batchSize {
		end := start + batchSize
		if end > len(entry.Items) {
			end = len(entry.Items)
		}
		for _, item := range entry.Items[start:end] {
			var err error
			if upsert {
				err = c.UpsertItem(ctx, entry.Name, item)
			} else {
				err = c.CreateItem(ctx, entry.Name, item)
			}
			if err != nil {
				report.failItem(entry.Name, item.ID(), err)
				continue
			}
			if upsert {
				stats.Updated++
			} else {
				stats.Created++
			}
		}
		fmt.Fprintf(progress, "[%s] wrote %d/%d items\n", entry.Name, end, len(entry.Items))
	}
	fmt.Fprintf(progress, "[%s] uploaded: created %d, upserted %d, failed %d\n", entry.Name, stats.Created, stats.Updated, stats.Failed)
}
