package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/detour-dev/detour/pkg/dotdir"
	"github.com/detour-dev/detour/pkg/proxyurl"
)

// ErrUnavailable marks the absence of any provider configuration. Callers
// treat it as the inert "no proxying configured" steady state, not an
// application error.
var ErrUnavailable = errors.New("no provider configuration available")

// ErrNotSet marks a configuration key with no value in the file.
var ErrNotSet = errors.New("not set")

const (
	configFile = "config.toml"

	// EnvDebug overrides the debug flag of the provider configuration.
	EnvDebug = "DETOUR_DEBUG"

	// EnvEntryPrefix prefixes per-provider proxy URL overrides, e.g.
	// DETOUR_PROXY_ANTHROPIC. Underscores in the remainder map to hyphens,
	// so DETOUR_PROXY_AMAZON_BEDROCK overrides the amazon-bedrock entry.
	EnvEntryPrefix = "DETOUR_PROXY_"
)

// Loader reads the provider configuration: config.toml in the resolved
// .detour directory, overlaid with DETOUR_PROXY_* environment variables.
type Loader struct {
	path string
}

// NewLoader resolves the configuration file location. overrideDir, when
// non-empty, bypasses the usual ./.detour then ~/.detour resolution.
func NewLoader(overrideDir string) (*Loader, error) {
	ddm := dotdir.NewManager()
	target, err := ddm.Target(overrideDir)
	if err != nil {
		return nil, err
	}
	return &Loader{path: filepath.Join(target, configFile)}, nil
}

// Path returns the absolute path of the configuration file.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the file, applies the environment overlay, validates the
// result, and constructs the provider configuration. A missing file with no
// environment overlay yields a wrapped ErrUnavailable.
func (l *Loader) Load(_ context.Context) (*ProviderConfig, error) {
	raw, err := l.Raw()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s not found and no %s<PROVIDER> variables set",
			ErrUnavailable, l.path, EnvEntryPrefix)
	}
	return New(raw)
}

// Raw returns the merged raw mapping (file plus environment overlay)
// without validating it.
func (l *Loader) Raw() (map[string]any, error) {
	raw, err := l.readFile()
	if err != nil {
		return nil, err
	}
	applyEnvOverlay(raw, os.Environ())
	return raw, nil
}

// readFile reads and decodes config.toml. A missing file is not an error;
// it decodes to an empty mapping so the environment overlay can still
// contribute entries.
func (l *Loader) readFile() (map[string]any, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	raw := map[string]any{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", l.path, err)
	}
	return raw, nil
}

// applyEnvOverlay merges DETOUR_PROXY_<PROVIDER> and DETOUR_DEBUG variables
// over the raw file values. An unparseable DETOUR_DEBUG is kept as a string
// so validation reports it instead of silently dropping it.
func applyEnvOverlay(raw map[string]any, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		switch {
		case key == EnvDebug:
			if b, err := strconv.ParseBool(value); err == nil {
				raw[debugKey] = b
			} else {
				raw[debugKey] = value
			}

		case strings.HasPrefix(key, EnvEntryPrefix):
			id := strings.TrimPrefix(key, EnvEntryPrefix)
			if id == "" {
				continue
			}
			id = strings.ToLower(strings.ReplaceAll(id, "_", "-"))
			raw[id] = value
		}
	}
}

// SetValue validates and writes a single key into the configuration file.
// The debug key takes a boolean; any other key takes a proxy URL.
func (l *Loader) SetValue(key, value string) error {
	raw, err := l.readFile()
	if err != nil {
		return err
	}

	if key == debugKey {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for debug: %w", err)
		}
		raw[debugKey] = b
	} else {
		if _, err := proxyurl.Parse(value); err != nil {
			return err
		}
		raw[key] = value
	}

	return l.save(raw)
}

// GetValue returns the string form of a single key from the configuration
// file. The environment overlay is not consulted; this is a file editor.
func (l *Loader) GetValue(key string) (string, error) {
	raw, err := l.readFile()
	if err != nil {
		return "", err
	}

	v, ok := raw[key]
	if !ok {
		return "", fmt.Errorf("key %q: %w", key, ErrNotSet)
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return fmt.Sprintf("%v", t), nil
	}
}

// Unset removes a key from the configuration file.
func (l *Loader) Unset(key string) error {
	raw, err := l.readFile()
	if err != nil {
		return err
	}

	if _, ok := raw[key]; !ok {
		return fmt.Errorf("key %q: %w", key, ErrNotSet)
	}
	delete(raw, key)

	return l.save(raw)
}

func (l *Loader) save(raw map[string]any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(l.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
