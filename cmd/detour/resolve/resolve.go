// Package resolvecmder provides the resolve command reporting how a URL
// would route.
package resolvecmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/detour-dev/detour/pkg/cliui"
	"github.com/detour-dev/detour/pkg/config"
	"github.com/detour-dev/detour/pkg/proxyurl"
	"github.com/detour-dev/detour/router"
)

const resolveLongDesc string = `Resolve a URL against the provider configuration.

Loads the configuration the way the daemon does, compiles the routing
table, and reports whether the URL would travel through a proxy or connect
directly. Nothing is contacted.

Examples:
  detour resolve https://api.anthropic.com/v1/messages
  detour resolve --config-dir /etc/detour https://api.openai.com/v1/models`

const resolveShortDesc string = "Resolve a URL against the provider configuration"

func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: resolveShortDesc,
		Long:  resolveLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runResolve(args[0], configDir)
		},
	}

	return cmd
}

func runResolve(rawURL, configDir string) error {
	loader, err := config.NewLoader(configDir)
	if err != nil {
		return fmt.Errorf("resolving detour directory: %w", err)
	}

	cfg, err := loader.Load(context.Background())
	if err != nil && !errors.Is(err, config.ErrUnavailable) {
		return err
	}

	table := router.Compile(cfg, zap.NewNop())
	d := router.Resolve(rawURL, table)

	if d.Direct() {
		fmt.Printf("\n  %s  %s\n\n",
			cliui.DimStyle.Render("direct"),
			cliui.ValueStyle.Render(rawURL),
		)
		return nil
	}

	fmt.Printf("\n  %s  %s\n\n",
		cliui.KeyStyle.Render("proxy"),
		cliui.ValueStyle.Render(rawURL),
	)
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("provider:"), cliui.ValueStyle.Render(d.Provider))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("pattern: "), cliui.ValueStyle.Render(d.Pattern))
	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("via:     "), cliui.ValueStyle.Render(proxyurl.Redact(d.ProxyURL)))

	return nil
}
