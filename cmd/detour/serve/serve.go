// Package servecmder provides the serve command running the resolver
// daemon.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/detour-dev/detour/api"
	"github.com/detour-dev/detour/pkg/config"
	"github.com/detour-dev/detour/pkg/logger"
	"github.com/detour-dev/detour/router"
)

type ServeCommander struct {
	listen       string
	watchMode    string
	pollInterval time.Duration
	debug        bool
	configDir    string
	viper        *viper.Viper
	logger       *zap.Logger
}

const serveLongDesc string = `Run the detour resolver daemon.

The daemon loads the provider configuration from config.toml in the detour
directory, publishes the routing table, and keeps it fresh as the
configuration changes. The inspect API exposes the active routes and
resolution decisions.

Operational settings resolve as flags, then DETOUR_* environment variables,
then settings.toml in the detour directory, then defaults.`

const serveShortDesc string = "Run the detour resolver daemon"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, err := cmd.Flags().GetString("config-dir")
			if err != nil {
				return fmt.Errorf("could not get config-dir flag: %v", err)
			}

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagListen,
				config.FlagWatchMode,
				config.FlagPollInterval,
			})

			cmder.viper = v
			cmder.configDir = configDir
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagWatchMode, &cmder.watchMode)
	config.AddDurationFlag(cmd, config.Flags, config.FlagPollInterval, &cmder.pollInterval)

	return cmd
}

func (c *ServeCommander) run() error {
	settings := config.SettingsFromViper(c.viper)

	forceDebug := c.debug || settings.Debug
	log, level := logger.NewLeveledLogger(forceDebug)
	c.logger = log
	defer log.Sync()

	loader, err := config.NewLoader(c.configDir)
	if err != nil {
		return fmt.Errorf("resolving detour directory: %w", err)
	}

	rt := router.New(loader, log,
		router.WithLevel(level),
		router.WithForceDebug(forceDebug),
	)

	// A missing or rejected configuration leaves the router inert; the
	// daemon keeps serving and picks up fixes on the next reload.
	_ = rt.Reload(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := c.newChangeSource(loader.Path(), settings)
	if err != nil {
		return err
	}
	if src != nil {
		defer src.Close()
		go rt.Watch(ctx, src)

		log.Info("watching configuration",
			zap.String("config", loader.Path()),
			zap.String("mode", settings.WatchMode),
		)
	}

	apiServer := api.NewServer(api.Config{ListenAddr: settings.Listen}, rt, log)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 1)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}

func (c *ServeCommander) newChangeSource(path string, settings *config.Settings) (router.ChangeSource, error) {
	switch settings.WatchMode {
	case config.WatchOff:
		return nil, nil
	case config.WatchFSNotify:
		return router.NewFSWatcher(path, c.logger)
	case config.WatchPoll:
		return router.NewPoller(path, settings.PollInterval), nil
	default:
		return nil, fmt.Errorf("unknown watch mode %q (expected poll, fsnotify, or off)", settings.WatchMode)
	}
}
