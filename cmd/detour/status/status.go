// Package statuscmder provides the status command for inspecting the
// routing state of a running detour daemon.
package statuscmder

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/detour-dev/detour/pkg/cliui"
	"github.com/detour-dev/detour/pkg/config"
	"github.com/detour-dev/detour/router"
)

const statusLongDesc string = `Show the routing state of a running detour daemon.

Queries the inspect API of a "detour serve" process and displays whether
routing is active, the current table generation, the number of compiled
rules, and the outcome of the most recent configuration reload.

If nothing is listening on the inspect address, reports that detour is not
running.

Examples:
  detour status
  detour status --listen 127.0.0.1:7979`

const statusShortDesc string = "Show the routing state of a running daemon"

// StatusCommander holds dependencies and flag values for the status command.
type StatusCommander struct {
	listen string

	viper *viper.Viper
}

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	c := &StatusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})
			c.viper = v

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &c.listen)

	return cmd
}

func (c *StatusCommander) run() error {
	settings := config.SettingsFromViper(c.viper)

	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(statusURL(settings.Listen))
	if err != nil {
		fmt.Printf("  %s detour is not running on %s\n", cliui.DimStyle.Render("●"), settings.Listen)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	var status router.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("decoding status response: %w", err)
	}

	state := cliui.DimStyle.Render("inactive (no configuration, all traffic direct)")
	if status.Active {
		state = cliui.ValueStyle.Render("active")
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("State:     "), state)

	if status.Active {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Generation:"), cliui.ValueStyle.Render(status.Generation))
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Rules:     "), cliui.ValueStyle.Render(strconv.Itoa(status.Rules)))
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Debug:     "), cliui.ValueStyle.Render(strconv.FormatBool(status.Debug)))
	}

	if !status.LastReload.IsZero() {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Reloaded:  "), cliui.ValueStyle.Render(status.LastReload.Format(time.RFC3339)))
	}

	if status.LastError != "" {
		fmt.Printf("  %s %s\n", cliui.FailMark, cliui.DimStyle.Render("last reload failed: "+status.LastError))
	}

	fmt.Println()
	return nil
}

// statusURL builds the inspect API status endpoint from a listen address.
// Wildcard and empty hosts are reachable on loopback.
func statusURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen + "/v1/status"
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return "http://" + net.JoinHostPort(host, port) + "/v1/status"
}
