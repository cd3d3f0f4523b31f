package configcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/detour-dev/detour/pkg/cliui"
	"github.com/detour-dev/detour/pkg/config"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from the config.toml file stored in the
.detour/ directory. Keys are provider ids, plus debug.

Examples:
  detour config get anthropic
  detour config get debug`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "get <key>",
		Short:             getShortDesc,
		Long:              getLongDesc,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(args[0], configDir)
		},
	}

	return cmd
}

func runGet(key, configDir string) error {
	loader, err := config.NewLoader(configDir)
	if err != nil {
		return fmt.Errorf("resolving detour directory: %w", err)
	}

	fmt.Printf("\n  %s %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(loader.Path()),
	)

	value, err := loader.GetValue(key)
	switch {
	case errors.Is(err, config.ErrNotSet):
		fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.DimStyle.Render("<not set>"))
		return nil
	case err != nil:
		return err
	}

	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(value))
	return nil
}
