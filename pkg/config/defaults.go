package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	defaultListen       = ":7979"
	defaultWatchMode    = "poll"
	defaultPollInterval = time.Second
	defaultDebug        = false
)

// Watch modes accepted by the watch.mode setting.
const (
	WatchPoll     = "poll"
	WatchFSNotify = "fsnotify"
	WatchOff      = "off"
)

// Settings holds the operational settings that govern the detour process
// itself: where the inspect API listens and how configuration changes are
// detected. They resolve through the viper precedence chain and are not
// part of the hot-reloaded provider configuration.
type Settings struct {
	Listen       string
	WatchMode    string
	PollInterval time.Duration
	Debug        bool
}

// NewDefaultSettings returns the default operational settings.
// This is the single source of truth for default values.
func NewDefaultSettings() *Settings {
	return &Settings{
		Listen:       defaultListen,
		WatchMode:    defaultWatchMode,
		PollInterval: defaultPollInterval,
		Debug:        defaultDebug,
	}
}

// SettingsFromViper materializes Settings from the resolved viper chain
// (flag > env > settings.toml > default).
func SettingsFromViper(v *viper.Viper) *Settings {
	return &Settings{
		Listen:       v.GetString("api.listen"),
		WatchMode:    v.GetString("watch.mode"),
		PollInterval: v.GetDuration("watch.interval"),
		Debug:        v.GetBool("debug"),
	}
}
