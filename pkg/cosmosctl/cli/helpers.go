package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	clientpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/client"
)

func requireEnvironment(cmdEnv *Environment) (*Environment, error) {
	if cmdEnv == nil {
		return nil, errors.New("cli environment is nil")
	}
	if cmdEnv.Config == nil {
		return nil, errors.New("configuration not loaded; ensure command runs after initialization")
	}
	return cmdEnv, nil
}

// resolveConnection validates that endpoint, key, and database are all
// available after flag/env/config resolution, reporting every missing
// parameter at once.
func resolveConnection(env *Environment) (endpoint, key, database string, allowInsecure bool, err error) {
	envCtx, err := requireEnvironment(env)
	if err != nil {
		return "", "", "", false, err
	}
	endpoint = strings.TrimSpace(envCtx.Config.Endpoint)
	key = strings.TrimSpace(envCtx.Config.Key)
	database = strings.TrimSpace(envCtx.Config.Database)

	var missing []string
	if endpoint == "" {
		missing = append(missing, "endpoint (--endpoint/-e or COSMOS_ENDPOINT)")
	}
	if key == "" {
		missing = append(missing, "key (--key/-k or COSMOS_KEY)")
	}
	if database == "" {
		missing = append(missing, "database (--database/-d or COSMOS_DATABASE)")
	}
	if len(missing) > 0 {
		return "", "", "", false, fmt.Errorf("missing required connection parameters:\n  - %s", strings.Join(missing, "\n  - "))
	}
	return endpoint, key, database, envCtx.Config.AllowInsecure, nil
}

func cosmosClientFromEnv(env *Environment) (*clientpkg.CosmosClient, error) {
	endpoint, key, database, allowInsecure, err := resolveConnection(env)
	if err != nil {
		return nil, err
	}
	return clientpkg.NewCosmosClient(endpoint, key, database, clientpkg.WithAllowInsecure(allowInsecure))
}

// confirm asks the user a yes/no question. Non-interactive runs (stdin not a
// terminal) cannot be prompted and return an error telling the caller to pass
// --force.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false, errors.New("cannot prompt for confirmation in a non-interactive session; re-run with --force")
	}
	answer := false
	prompt := &survey.Confirm{Message: question}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

func printJSON(cmd *cobra.Command, value interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// cell shortens a table cell to max display columns, appending an ellipsis.
func cell(value string, max int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "-"
	}
	if max <= 0 || runewidth.StringWidth(trimmed) <= max {
		return trimmed
	}
	return runewidth.Truncate(trimmed, max, "...")
}

func formatCount(n int64) string {
	return humanize.Comma(n)
}

func formatThroughput(t *int32) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%d RU/s", *t)
}

func formatBytes(n int) string {
	if n < 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}
