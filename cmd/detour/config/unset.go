package configcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/detour-dev/detour/pkg/cliui"
	"github.com/detour-dev/detour/pkg/config"
)

const unsetLongDesc string = `Remove a configuration value.

Removes the given key from the config.toml file in the .detour/ directory.
The provider's traffic connects directly afterwards.

Examples:
  detour config unset openai`

const unsetShortDesc string = "Remove a configuration value"

func newUnsetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "unset <key>",
		Short:             unsetShortDesc,
		Long:              unsetLongDesc,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runUnset(args[0], configDir)
		},
	}

	return cmd
}

func runUnset(key, configDir string) error {
	loader, err := config.NewLoader(configDir)
	if err != nil {
		return fmt.Errorf("resolving detour directory: %w", err)
	}

	err = loader.Unset(key)
	switch {
	case errors.Is(err, config.ErrNotSet):
		fmt.Printf("\n  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.DimStyle.Render("<not set>"))
		return nil
	case err != nil:
		return err
	}

	fmt.Printf("\n  %s Unset %s\n\n", cliui.SuccessMark, cliui.KeyStyle.Render(key))
	return nil
}
