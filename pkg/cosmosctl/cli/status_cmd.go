package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pipelinepkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/pipeline"
)

func newStatusCommand(env *Environment) *cobra.Command {
	var containersFlag string
	var detailed bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show item counts for containers in the database",
		Example: `  # Counts for every container
  cosmosctl status

  # Detailed view (partition key, throughput) for two containers
  cosmosctl status -c users,orders --detailed`,
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

			report, err := pipelinepkg.Status(cmd.Context(), c, database, pipelinepkg.StatusOptions{
				Selector: pipelinepkg.ParseSelector(containersFlag),
				Detailed: detailed,
			})
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}

			if asJSON {
				return printJSON(cmd, statusReportJSON(report))
			}

			printStatusReport(cmd, report, detailed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&containersFlag, "containers", "c", "", "Containers to inspect: 'all' or a comma-separated list (default all)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include partition key path and provisioned throughput")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func printStatusReport(cmd *cobra.Command, report *pipelinepkg.StatusReport, detailed bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database: %s\n\n", report.Database)

	if len(report.Containers) == 0 {
		fmt.Fprintln(out, "No containers found")
		return
	}

	headers := []string{"CONTAINER", "ITEMS"}
	if detailed {
		headers = append(headers, "PARTITION KEY", "THROUGHPUT")
	}
	var rows [][]string
	for _, cs := range report.Containers {
		if cs.Err != nil {
			row := []string{cell(cs.Name, 40), "error"}
			if detailed {
				row = append(row, "-", "-")
			}
			rows = append(rows, row)
			continue
		}
		row := []string{cell(cs.Name, 40), formatCount(cs.ItemCount)}
		if detailed {
			row = append(row, cell(cs.PartitionKeyPath, 30), formatThroughput(cs.Throughput))
		}
		rows = append(rows, row)
	}
	renderTable(cmd, headers, rows)

	fmt.Fprintf(out, "\nTotal items: %s across %d container(s)\n", formatCount(report.TotalItems()), len(report.Containers))
	if empty := report.EmptyContainers(); len(empty) > 0 {
		fmt.Fprintf(out, "Empty containers: %s\n", strings.Join(empty, ", "))
	}
	if missing := report.MissingPartitionKey(); len(missing) > 0 {
		fmt.Fprintf(out, "Warning: no partition key defined: %s\n", strings.Join(missing, ", "))
	}
	if failed := report.FailedContainers(); len(failed) > 0 {
		fmt.Fprintf(out, "Failed to inspect: %s\n", strings.Join(failed, ", "))
		for _, cs := range report.Containers {
			if cs.Err != nil {
				fmt.Fprintf(out, "  %s: %v\n", cs.Name, cs.Err)
			}
		}
	}
}

type statusRowJSON struct {
	Name             string `json:"name"`
	ItemCount        int64  `json:"itemCount"`
	PartitionKeyPath string `json:"partitionKeyPath,omitempty"`
	Throughput       *int32 `json:"throughput,omitempty"`
	Error            string `json:"error,omitempty"`
}

type statusReportJSONDoc struct {
	Database   string          `json:"database"`
	TotalItems int64           `json:"totalItems"`
	Containers []statusRowJSON `json:"containers"`
}

func statusReportJSON(report *pipelinepkg.StatusReport) statusReportJSONDoc {
	doc := statusReportJSONDoc{Database: report.Database, TotalItems: report.TotalItems()}
	for _, cs := range report.Containers {
		row := statusRowJSON{
			Name:             cs.Name,
			ItemCount:        cs.ItemCount,
			PartitionKeyPath: cs.PartitionKeyPath,
			Throughput:       cs.Throughput,
		}
		if cs.Err != nil {
			row.Error = cs.Err.Error()
		}
		doc.Containers = append(doc.Containers, row)
	}
	return doc
}
