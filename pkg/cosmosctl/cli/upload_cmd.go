package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	pipelinepkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/pipeline"
	snapshotpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/snapshot"
)

func newUploadCommand(env *Environment) *cobra.Command {
	var containersFlag string
	var input string
	var batchSize int
	var upsert bool
	var dryRun bool
	var createContainers bool
	var force bool

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a JSON snapshot into the database",
		Example: `  # Preview what a snapshot would write
  cosmosctl upload -i backup.json --dry-run

  # Replay a snapshot, overwriting existing items
  cosmosctl upload -i backup.json --upsert --create-containers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			envCtx, err := requireEnvironment(env)
			if err != nil {
				return err
			}
			c, err := cosmosClientFromEnv(envCtx)
			if err != nil {
				return err
			}
			database := c.DatabaseName()

			doc, err := snapshotpkg.Read(input)
			if err != nil {
				return err
			}

			printUploadPreview(cmd, doc, input)

			if !dryRun && !force {
				mode := "create (fails on existing items)"
				if upsert {
					mode = "upsert (overwrites existing items)"
				}
				ok, err := confirm(cmd, fmt.Sprintf("Upload %d item(s) into database %q in %s mode?", doc.TotalItems, database, mode))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Upload cancelled")
					return nil
				}
			}

			report, err := pipelinepkg.UploadSnapshot(cmd.Context(), c, database, doc, pipelinepkg.UploadOptions{
				Selector:         pipelinepkg.ParseSelector(containersFlag),
				BatchSize:        batchSize,
				Upsert:           upsert,
				DryRun:           dryRun,
				CreateContainers: createContainers,
				Progress:         cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			printUploadSummary(cmd, report, dryRun)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Snapshot file to upload (required)")
	cmd.Flags().StringVarP(&containersFlag, "containers", "c", "", "Containers to upload: 'all' or a comma-separated list (default all in snapshot)")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", pipelinepkg.DefaultBatchSize, "Items per write batch")
	cmd.Flags().BoolVarP(&upsert, "upsert", "u", false, "Overwrite existing items instead of failing on conflicts")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be written without writing")
	cmd.Flags().BoolVar(&createContainers, "create-containers", false, "Create containers missing from the database")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompts")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func printUploadPreview(cmd *cobra.Command, doc *snapshotpkg.Document, input string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Snapshot: %s\n", input)
	if doc.Database != "" {
		fmt.Fprintf(out, "Source database: %s\n", doc.Database)
	}
	if !doc.ExportedAt.IsZero() {
		fmt.Fprintf(out, "Exported at: %s\n", doc.ExportedAt.Format(time.RFC3339))
	}
	fmt.Fprintln(out)

	headers := []string{"CONTAINER", "ITEMS", "PARTITION KEY"}
	var rows [][]string
	for _, entry := range doc.Containers {
		rows = append(rows, []string{
			cell(entry.Name, 40),
			formatCount(int64(len(entry.Items))),
			cell(entry.PartitionKeyPath, 30),
		})
	}
	renderTable(cmd, headers, rows)
	fmt.Fprintln(out)
}

func printUploadSummary(cmd *cobra.Command, report *pipelinepkg.Report, dryRun bool) {
	out := cmd.OutOrStdout()

	headers := []string{"CONTAINER", "CREATED", "UPSERTED", "FAILED", "STATUS"}
	if dryRun {
		headers = []string{"CONTAINER", "WOULD WRITE"}
	}
	var rows [][]string
	for _, cs := range report.Containers {
		if dryRun {
			rows = append(rows, []string{cell(cs.Name, 40), formatCount(int64(cs.Skipped))})
			continue
		}
		status := "ok"
		if cs.Err != nil {
			status = "failed"
		}
		rows = append(rows, []string{
			cell(cs.Name, 40),
			formatCount(int64(cs.Created)),
			formatCount(int64(cs.Updated)),
			formatCount(int64(cs.Failed)),
			status,
		})
	}
	renderTable(cmd, headers, rows)

	if dryRun {
		fmt.Fprintln(out, "\nDry run: no items were written")
		return
	}
	fmt.Fprintf(out, "\nWrote %s item(s) across %d container(s) in %s\n",
		formatCount(int64(report.TotalWritten())), len(report.SucceededContainers()), report.Elapsed.Round(time.Millisecond))
	if failed := report.FailedContainers(); len(failed) > 0 {
		fmt.Fprintf(out, "Failed containers: %s\n", strings.Join(failed, ", "))
	}
	if len(report.Failures) > 0 {
		limit := len(report.Failures)
		if limit > 10 {
			limit = 10
		}
		fmt.Fprintf(out, "Item failures (%d):\n", len(report.Failures))
		for _, f := range report.Failures[:limit] {
			fmt.Fprintf(out, "  %s\n", f)
		}
		if rest := len(report.Failures) - limit; rest > 0 {
			fmt.Fprintf(out, "  ... and %d more\n", rest)
		}
	}
}
