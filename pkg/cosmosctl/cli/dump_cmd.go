package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	pipelinepkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/pipeline"
)

func newDumpCommand(env *Environment) *cobra.Command {
	var containersFlag string
	var output string
	var batchSize int
	var pretty bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Export containers to a JSON snapshot file",
		Example: `  # Dump every container
  cosmosctl dump -c all -o backup.json

  # Dump two containers with indented output
  cosmosctl dump -c users,orders -o backup.json --pretty`,
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

			report, err := pipelinepkg.Dump(cmd.Context(), c, database, pipelinepkg.DumpOptions{
				Selector:  pipelinepkg.ParseSelector(containersFlag),
				Output:    output,
				BatchSize: batchSize,
				Pretty:    pretty,
				Progress:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("dump failed: %w", err)
			}

			printDumpSummary(cmd, report, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&containersFlag, "containers", "c", "", "Containers to dump: 'all' or a comma-separated list (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Snapshot file to write (required)")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", pipelinepkg.DefaultBatchSize, "Items per progress batch")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the JSON output")
	_ = cmd.MarkFlagRequired("containers")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func printDumpSummary(cmd *cobra.Command, report *pipelinepkg.Report, output string) {
	out := cmd.OutOrStdout()

	headers := []string{"CONTAINER", "ITEMS", "STATUS"}
	var rows [][]string
	for _, cs := range report.Containers {
		status := "exported"
		if cs.Err != nil {
			status = "failed"
		}
		rows = append(rows, []string{cell(cs.Name, 40), formatCount(int64(cs.Read)), status})
	}
	renderTable(cmd, headers, rows)

	fmt.Fprintf(out, "\nExported %s items from %d container(s) to %s in %s\n",
		formatCount(int64(report.TotalExported())), len(report.SucceededContainers()), output, report.Elapsed.Round(time.Millisecond))
	if info, err := os.Stat(output); err == nil {
		fmt.Fprintf(out, "Snapshot size: %s\n", formatBytes(int(info.Size())))
	}
	if failed := report.FailedContainers(); len(failed) > 0 {
		fmt.Fprintf(out, "Failed containers: %s\n", strings.Join(failed, ", "))
	}
}
