// Package detourcmder
package detourcmder

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	checkcmder "github.com/detour-dev/detour/cmd/detour/check"
	configcmder "github.com/detour-dev/detour/cmd/detour/config"
	initcmder "github.com/detour-dev/detour/cmd/detour/init"
	resolvecmder "github.com/detour-dev/detour/cmd/detour/resolve"
	servecmder "github.com/detour-dev/detour/cmd/detour/serve"
	statuscmder "github.com/detour-dev/detour/cmd/detour/status"
	versioncmder "github.com/detour-dev/detour/cmd/version"
)

const detourLongDesc string = `Detour routes your AI provider traffic through the right proxy.

Outgoing requests are matched against known provider endpoints. Requests to
a provider with a configured proxy travel through that proxy; everything
else connects directly.

Run the resolver daemon using:
  detour serve         Watch the configuration and serve the inspect API`

const detourShortDesc string = "Detour - Selective proxy routing for AI providers"

func NewDetourCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detour",
		Short: detourShortDesc,
		Long:  detourLongDesc,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// A missing .env file is fine.
			_ = godotenv.Load()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config-dir", "c", "", "Detour directory (default: ./.detour, then ~/.detour)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(checkcmder.NewCheckCmd())
	cmd.AddCommand(resolvecmder.NewResolveCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
