package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	versionpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cosmosctl version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", versionpkg.Name, versionpkg.String())
			fmt.Fprintf(out, "  Go:       %s\n", runtime.Version())
			fmt.Fprintf(out, "  Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
