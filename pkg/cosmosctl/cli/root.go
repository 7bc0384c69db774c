package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	configpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/config"
)

// Environment variable fallbacks for the three required connection
// parameters, consulted when the matching flag is not given.
const (
	envEndpoint = "COSMOS_ENDPOINT"
	envKeyVar   = "COSMOS_KEY"
	envDatabase = "COSMOS_DATABASE"
)

// NewRootCommand constructs the root Cobra command for cosmosctl.
func NewRootCommand() *cobra.Command {
	env := &Environment{}
	var configPath string
	var overrideEndpoint string
	var overrideKey string
	var overrideDatabase string
	var allowInsecure bool

	defaultPath, err := configpkg.DefaultPath()
	if err == nil {
		configPath = defaultPath
	}

	cmd := &cobra.Command{
		Use:           "cosmosctl",
		Short:         "Utilities for Azure Cosmos DB databases",
		Long:          "Test connections, report container status, dump containers to JSON snapshots, upload snapshots, and manage databases in an Azure Cosmos DB account.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(configPath)
			if path == "" {
				var err error
				path, err = configpkg.DefaultPath()
				if err != nil {
					return err
				}
			}

			cfg, err := configpkg.Load(path)
			if err != nil {
				return err
			}

			env.ConfigPath = path
			env.Config = cfg

			// Precedence: flag, then COSMOS_* environment variable,
			// then persisted config.
			applyOverride(&env.Config.Endpoint, overrideEndpoint, os.Getenv(envEndpoint))
			applyOverride(&env.Config.Key, overrideKey, os.Getenv(envKeyVar))
			applyOverride(&env.Config.Database, overrideDatabase, os.Getenv(envDatabase))
			if cmd.Flags().Changed("allow-insecure") {
				env.Config.AllowInsecure = allowInsecure
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", configPath, "Path to cosmosctl config file")
	cmd.PersistentFlags().StringVarP(&overrideEndpoint, "endpoint", "e", "", "Cosmos DB endpoint URL (or set COSMOS_ENDPOINT)")
	cmd.PersistentFlags().StringVarP(&overrideKey, "key", "k", "", "Cosmos DB account key (or set COSMOS_KEY)")
	cmd.PersistentFlags().StringVarP(&overrideDatabase, "database", "d", "", "Cosmos DB database name (or set COSMOS_DATABASE)")
	cmd.PersistentFlags().BoolVarP(&allowInsecure, "allow-insecure", "a", false, "Skip TLS certificate verification (emulators only)")

	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(newTestCommand(env))
	cmd.AddCommand(newStatusCommand(env))
	cmd.AddCommand(newDumpCommand(env))
	cmd.AddCommand(newUploadCommand(env))
	cmd.AddCommand(newDeleteDBCommand(env))
	registerConfigCommands(cmd, env)
	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(newCompletionCommand())

	return cmd
}

// applyOverride sets target from the first non-empty value among the flag and
// environment variable, keeping the existing (config file) value otherwise.
func applyOverride(target *string, flagValue, envValue string) {
	if v := strings.TrimSpace(flagValue); v != "" {
		*target = v
		return
	}
	if v := strings.TrimSpace(envValue); v != "" {
		*target = v
	}
}

// Execute runs the cosmosctl CLI with the provided context.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if ctx != nil {
		return root.ExecuteContext(ctx)
	}
	return root.Execute()
}
