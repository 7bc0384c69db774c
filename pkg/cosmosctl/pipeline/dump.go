package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	clientpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/client"
	snapshotpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/snapshot"
)

// DefaultBatchSize bounds write pacing and progress cadence when no batch
// size is given. It never affects final state.
const DefaultBatchSize = 100

// DumpOptions configures an export run.
type DumpOptions struct {
	// Selector must not be zero; dump refuses to guess.
	Selector Selector
	// Output is the snapshot file path.
	Output string
	// BatchSize sets the progress-report cadence while draining items.
	BatchSize int
	// Pretty enables indented JSON output.
	Pretty bool
	// Progress receives per-container progress lines. Nil discards them.
	Progress io.Writer
}

// Dump exports the selected containers of database into a single snapshot
// file. The snapshot is not a consistent point-in-time view: concurrent
// writers to the source database can produce a non-atomic picture, and no
// cross-container transaction exists to prevent it.
//
// A container that fails mid-read is recorded in the report and skipped; the
// dump fails outright only when the selector cannot be resolved, when every
// container fails, or when the output file cannot be written. Output is
// written atomically, so a failed dump leaves no partial file.
func Dump(ctx context.Context, c clientpkg.Interface, database string, opts DumpOptions) (*Report, error) {
	if opts.Selector.IsZero() {
		return nil, errors.New(`no containers specified: use "all" or an explicit name list`)
	}
	if opts.Output == "" {
		return nil, errors.New("output path is required")
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	report := newReport(database)
	exportedAt := time.Now()

	available, err := c.ListContainers(ctx)
	if err != nil {
		return report.finish(), err
	}
	selected, err := opts.Selector.resolve(available)
	if err != nil {
		return report.finish(), err
	}
	if len(selected) == 0 {
		return report.finish(), errors.New("database has no containers to dump")
	}

	var entries []snapshotpkg.ContainerEntry
	for _, cont := range selected {
		entry, err := dumpContainer(ctx, c, cont.Name, batchSize, progress, report)
		if err != nil {
			fmt.Fprintf(progress, "[%s] failed: %v\n", cont.Name, err)
			report.failContainer(cont.Name, err)
			continue
		}
		entries = append(entries, *entry)
	}
	if len(entries) == 0 {
		return report.finish(), errors.New("no containers could be exported")
	}

	doc := snapshotpkg.New(database, exportedAt, entries)
	if err := doc.Write(opts.Output, opts.Pretty); err != nil {
		return report.finish(), err
	}
	return report.finish(), nil
}

func dumpContainer(ctx context.Context, c clientpkg.Interface, name string, batchSize int, progress io.Writer, report *Report) (*snapshotpkg.ContainerEntry, error) {
	desc, err := c.ReadContainer(ctx, name)
	if err != nil {
		return nil, err
	}
	stats := report.container(name)
	pkField := clientpkg.PartitionKeyField(desc.PartitionKeyPath)

	entry := &snapshotpkg.ContainerEntry{
		Name:             name,
		PartitionKeyPath: desc.PartitionKeyPath,
		Throughput:       desc.Throughput,
		Items:            []clientpkg.Item{},
	}
	err = c.ReadAllItems(ctx, name, func(item clientpkg.Item) error {
		entry.Items = append(entry.Items, item)
		stats.Read++
		if pkField != "" && !item.HasField(pkField) {
			stats.MissingPartitionKey++
		}
		if stats.Read%batchSize == 0 {
			fmt.Fprintf(progress, "[%s] read %d items...\n", name, stats.Read)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stats.MissingPartitionKey > 0 {
		fmt.Fprintf(progress, "[%s] %d items lack the partition key field %q\n", name, stats.MissingPartitionKey, pkField)
	}
	fmt.Fprintf(progress, "[%s] exported %d items\n", name, stats.Read)
	return entry, nil
}
