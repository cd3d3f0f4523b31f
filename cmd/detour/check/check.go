// Package checkcmder provides the check command validating the provider
// configuration without publishing it.
package checkcmder

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/detour-dev/detour/pkg/cliui"
	"github.com/detour-dev/detour/pkg/config"
	"github.com/detour-dev/detour/pkg/providers"
)

const checkLongDesc string = `Validate the provider configuration.

Reads config.toml from the detour directory, applies DETOUR_PROXY_*
environment overrides, and reports every invalid entry. Nothing is
published and the running daemon is unaffected.

Exit status is non-zero when the configuration would be rejected.

Examples:
  detour check
  detour check --config-dir /etc/detour`

const checkShortDesc string = "Validate the provider configuration"

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: checkShortDesc,
		Long:  checkLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runCheck(configDir)
		},
	}

	return cmd
}

func runCheck(configDir string) error {
	loader, err := config.NewLoader(configDir)
	if err != nil {
		return fmt.Errorf("resolving detour directory: %w", err)
	}

	fmt.Printf("\n  %s %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(loader.Path()),
	)

	raw, err := loader.Raw()
	if err != nil {
		return err
	}

	if len(raw) == 0 {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("No configuration found. All traffic connects directly."))
		return nil
	}

	problems := config.Problems(raw)
	messages := make(map[string]string, len(problems))
	for _, p := range problems {
		messages[p.Key] = p.Message
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if msg, bad := messages[key]; bad {
			fmt.Printf("  %s %s  %s\n", cliui.FailMark, cliui.KeyStyle.Render(key), msg)
			continue
		}

		if key != "debug" && !providers.IsKnown(key) {
			fmt.Printf("  %s %s  %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(key),
				cliui.DimStyle.Render("(not a known provider, never matches)"))
			continue
		}

		fmt.Printf("  %s %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(key))
	}
	fmt.Println()

	if len(problems) > 0 {
		return fmt.Errorf("configuration has %d invalid entries", len(problems))
	}

	fmt.Printf("  %s Configuration is valid.\n\n", cliui.SuccessMark)
	return nil
}
