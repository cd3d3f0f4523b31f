package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/detour-dev/detour/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper for operational
// settings. It sets defaults from NewDefaultSettings(), reads the optional
// settings.toml file (found via dotdir resolution), and binds environment
// variables with the DETOUR_ prefix.
//
// Note settings.toml is separate from config.toml: the latter is the flat
// provider-to-proxy mapping owned by Loader and hot-reloaded at runtime.
//
// Settings precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (DETOUR_API_LISTEN, DETOUR_WATCH_MODE, etc.)
//  3. settings.toml file values
//  4. Defaults from NewDefaultSettings()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultSettings().
	setViperDefaults(v)

	// 2. Settings file discovery via dotdir resolution.
	v.SetConfigName("settings")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Settings file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading settings: %w", err)
		}
	}

	// 3. Environment variables: DETOUR_API_LISTEN, DETOUR_WATCH_INTERVAL, etc.
	v.SetEnvPrefix("DETOUR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultSettings() into viper
// using dotted-key notation. This keeps defaults.go as the single source of
// truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultSettings()

	v.SetDefault("api.listen", d.Listen)
	v.SetDefault("watch.mode", d.WatchMode)
	v.SetDefault("watch.interval", d.PollInterval)
	v.SetDefault("debug", d.Debug)
}
