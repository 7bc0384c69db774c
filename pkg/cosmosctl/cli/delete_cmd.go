package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	clientpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/client"
	pipelinepkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/pipeline"
)

func newDeleteDBCommand(env *Environment) *cobra.Command {
	var listDatabases bool
	var force bool
	var yesReally bool

	cmd := &cobra.Command{
		Use:   "delete-db",
		Short: "Delete the configured database, or list databases in the account",
		Long:  "Delete the configured database and everything in it. Deletion is immediate and irreversible. Non-empty databases require a second confirmation unless --force is given.",
		Example: `  # List every database in the account
  cosmosctl delete-db --list-databases

  # Delete the configured database
  cosmosctl delete-db -d olddb`,
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
			out := cmd.OutOrStdout()

			if listDatabases {
				names, err := pipelinepkg.ListDatabases(cmd.Context(), c)
				if err != nil {
					return fmt.Errorf("list databases: %w", err)
				}
				if len(names) == 0 {
					fmt.Fprintln(out, "No databases found in the account")
					return nil
				}
				fmt.Fprintf(out, "Databases (%d):\n", len(names))
				for i, name := range names {
					marker := ""
					if name == database {
						marker = "  (configured)"
					}
					fmt.Fprintf(out, "  %d. %s%s\n", i+1, name, marker)
				}
				return nil
			}

			info, err := pipelinepkg.DescribeDatabase(cmd.Context(), c, database)
			if err != nil {
				if clientpkg.IsNotFound(err) {
					return fmt.Errorf("database %s does not exist", database)
				}
				return fmt.Errorf("inspect database: %w", err)
			}

			fmt.Fprintf(out, "Database: %s\n", info.Name)
			if len(info.Containers) == 0 {
				fmt.Fprintln(out, "The database is empty")
			} else {
				fmt.Fprintf(out, "Containers (%d): %s\n", len(info.Containers), strings.Join(info.Containers, ", "))
			}

			if !force {
				ok, err := confirm(cmd, fmt.Sprintf("Delete database %q and all of its data?", database))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Deletion cancelled")
					return nil
				}
				// A non-empty database gets a second confirmation.
				if len(info.Containers) > 0 && !yesReally {
					ok, err = confirm(cmd, fmt.Sprintf("Database %q contains %d container(s). Really delete?", database, len(info.Containers)))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Deletion cancelled")
						return nil
					}
				}
			}

			if err := pipelinepkg.DeleteDatabase(cmd.Context(), c, database); err != nil {
				return fmt.Errorf("delete database %s: %w", database, err)
			}
			fmt.Fprintf(out, "Deleted database %s\n", database)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&listDatabases, "list-databases", "l", false, "List databases in the account instead of deleting")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompts")
	cmd.Flags().BoolVar(&yesReally, "yes-really", false, "Skip the second confirmation for non-empty databases")

	return cmd
}
