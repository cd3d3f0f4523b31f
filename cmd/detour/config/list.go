package configcmder

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/detour-dev/detour/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays the effective provider configuration: the config.toml file in the
.detour/ directory with DETOUR_PROXY_* environment overrides applied.

Examples:
  detour config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(configDir)
		},
	}

	return cmd
}

func runList(configDir string) error {
	loader, err := config.NewLoader(configDir)
	if err != nil {
		return fmt.Errorf("resolving detour directory: %w", err)
	}

	fmt.Printf("Config file: %s\n\n", loader.Path())

	raw, err := loader.Raw()
	if err != nil {
		return err
	}

	if len(raw) == 0 {
		fmt.Print("No configuration found. All traffic connects directly.\n")
		return nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range keys {
		if len(k) > maxLen {
			maxLen = len(k)
		}
	}

	for _, key := range keys {
		fmt.Printf("%-*s = %v\n", maxLen, key, raw[key])
	}

	return nil
}
