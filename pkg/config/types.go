package config

import (
	"sort"
)

// ProviderConfig is the validated provider-to-proxy mapping that drives
// routing decisions. It is constructed once per load (file read plus
// environment overlay), never mutated afterwards, and replaced wholesale on
// reload.
type ProviderConfig struct {
	// Debug turns on per-request decision logging.
	Debug bool

	// Entries maps a provider identifier to its raw proxy URL string.
	// Keys without a builtin pattern are retained but never match a
	// request.
	Entries map[string]string
}

// Entry returns the raw proxy URL configured for the given provider id.
func (c *ProviderConfig) Entry(id string) (string, bool) {
	v, ok := c.Entries[id]
	return v, ok
}

// Providers returns the configured provider ids in sorted order.
func (c *ProviderConfig) Providers() []string {
	ids := make([]string, 0, len(c.Entries))
	for id := range c.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Equal reports whether two configurations would compile to the same
// routing behavior. Reloads use it to skip republishing an unchanged table.
func (c *ProviderConfig) Equal(o *ProviderConfig) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Debug != o.Debug || len(c.Entries) != len(o.Entries) {
		return false
	}
	for id, v := range c.Entries {
		if ov, ok := o.Entries[id]; !ok || ov != v {
			return false
		}
	}
	return true
}
