package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	pipelinepkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/pipeline"
)

func newTestCommand(env *Environment) *cobra.Command {
	var createDatabase bool
	var force bool

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the Cosmos DB connection and list containers",
		Example: `  # Test the connection using environment variables
  COSMOS_ENDPOINT=... COSMOS_KEY=... COSMOS_DATABASE=mydb cosmosctl test

  # Create the database when it does not exist yet
  cosmosctl test -e https://acct.documents.azure.com -k $KEY -d mydb --create-database`,
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

			if createDatabase && !force {
				ok, err := confirm(cmd, fmt.Sprintf("Create database %q if it does not exist?", database))
				if err != nil {
					return err
				}
				if !ok {
					createDatabase = false
				}
			}

			containers, created, err := pipelinepkg.TestConnection(cmd.Context(), c, database, pipelinepkg.ConnectOptions{
				CreateDatabase: createDatabase,
			})
			if err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created database %s\n", database)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected to database %s\n", database)

			if len(containers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No containers found in the database")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Available containers (%d):\n", len(containers))
			for i, cont := range containers {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, cont.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&createDatabase, "create-database", false, "Create the database if it does not exist")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompts")

	return cmd
}
