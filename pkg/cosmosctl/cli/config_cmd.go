package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func registerConfigCommands(root *cobra.Command, env *Environment) {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or update the local cosmosctl configuration",
	}

	cfgCmd.AddCommand(newConfigShowCommand(env))
	cfgCmd.AddCommand(newConfigSetCommand(env))
	cfgCmd.AddCommand(newConfigUnsetCommand(env))
	cfgCmd.AddCommand(newConfigPathCommand(env))

	root.AddCommand(cfgCmd)
}

func newConfigShowCommand(env *Environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current config as YAML",
		Long:  "Display the persisted cosmosctl configuration. The account key is masked.",
		Example: `  # Show current configuration
  cosmosctl config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			envCtx, err := requireEnvironment(env)
			if err != nil {
				return err
			}
			display := *envCtx.Config
			display.Key = envCtx.Config.MaskedKey()
			data, err := yaml.Marshal(display)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", envCtx.ConfigPath, string(data))
			return nil
		},
	}
}

func newConfigSetCommand(env *Environment) *cobra.Command {
	return &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Update a persisted setting (endpoint, key, database, allow-insecure)",
		Args:  cobra.ExactArgs(2),
		Example: `  # Persist the endpoint and database
  cosmosctl config set endpoint https://acct.documents.azure.com:443/
  cosmosctl config set database mydb`,
		RunE: func(cmd *cobra.Command, args []string) error {
			envCtx, err := requireEnvironment(env)
			if err != nil {
				return err
			}
			field := strings.ToLower(strings.TrimSpace(args[0]))
			value := strings.TrimSpace(args[1])
			switch field {
			case "endpoint":
				if value == "" {
					return errors.New("endpoint value is required")
				}
				envCtx.Config.Endpoint = value
			case "key":
				if value == "" {
					return errors.New("key value is required")
				}
				envCtx.Config.Key = value
			case "database":
				if value == "" {
					return errors.New("database value is required")
				}
				envCtx.Config.Database = value
			case "allow-insecure", "allow_insecure":
				b, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("allow-insecure expects a boolean, got %q", value)
				}
				envCtx.Config.AllowInsecure = b
			default:
				return fmt.Errorf("unknown config field %q (expected endpoint, key, database, or allow-insecure)", field)
			}
			if err := envCtx.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s in %s\n", field, envCtx.ConfigPath)
			return nil
		},
	}
}

func newConfigUnsetCommand(env *Environment) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <field>",
		Short: "Clear a persisted setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envCtx, err := requireEnvironment(env)
			if err != nil {
				return err
			}
			field := strings.ToLower(strings.TrimSpace(args[0]))
			switch field {
			case "endpoint":
				envCtx.Config.Endpoint = ""
			case "key":
				envCtx.Config.Key = ""
			case "database":
				envCtx.Config.Database = ""
			case "allow-insecure", "allow_insecure":
				envCtx.Config.AllowInsecure = false
			default:
				return fmt.Errorf("unknown config field %q (expected endpoint, key, database, or allow-insecure)", field)
			}
			if err := envCtx.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s in %s\n", field, envCtx.ConfigPath)
			return nil
		},
	}
}

func newConfigPathCommand(env *Environment) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			envCtx, err := requireEnvironment(env)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), envCtx.ConfigPath)
			return nil
		},
	}
}
