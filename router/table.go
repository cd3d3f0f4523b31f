// Package router implements the provider-to-proxy resolution engine. It
// compiles the provider configuration into an immutable routing table,
// resolves outgoing request URLs against that table, and republishes the
// table atomically when the configuration changes.
package router

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/detour-dev/detour/pkg/config"
	"github.com/detour-dev/detour/pkg/providers"
	"github.com/detour-dev/detour/pkg/proxyurl"
)

// rule is one compiled pattern. Rules are scanned in slice order at resolve
// time, so position encodes precedence.
type rule struct {
	provider string
	pattern  string
	proxyURL string
}

// Table is a compiled routing table. It is immutable after Compile; reloads
// build a new Table and swap the reference, never touch an existing one.
type Table struct {
	rules      []rule
	generation string
	compiledAt time.Time
	cfg        *config.ProviderConfig
}

// Compile turns a provider configuration into a routing table.
//
// The builtin provider table is walked in declaration order and each
// configured provider contributes one rule per hostname pattern. When two
// providers declare the same pattern, the later one overwrites the earlier
// rule in place, keeping the original scan position: last write wins at
// compile time. Entries that fail to parse are skipped with a warning;
// validation has already rejected them, so compilation itself never fails.
// Configured keys without builtin patterns contribute nothing.
func Compile(cfg *config.ProviderConfig, log *zap.Logger) *Table {
	if cfg == nil {
		cfg = &config.ProviderConfig{}
	}

	t := &Table{
		generation: uuid.NewString(),
		compiledAt: time.Now(),
		cfg:        cfg,
	}

	index := make(map[string]int)
	for _, p := range providers.Builtin() {
		raw, ok := cfg.Entry(p.ID)
		if !ok {
			continue
		}

		d, err := proxyurl.Parse(raw)
		if err != nil {
			log.Warn("skipping provider with invalid proxy URL",
				zap.String("provider", p.ID),
				zap.Error(err),
			)
			continue
		}
		canonical := d.String()

		for _, pattern := range p.Patterns {
			pattern = strings.ToLower(pattern)
			if i, dup := index[pattern]; dup {
				t.rules[i] = rule{provider: p.ID, pattern: pattern, proxyURL: canonical}
				continue
			}
			index[pattern] = len(t.rules)
			t.rules = append(t.rules, rule{provider: p.ID, pattern: pattern, proxyURL: canonical})
		}
	}

	if unknown := unknownEntries(cfg); len(unknown) > 0 {
		log.Debug("configured providers without builtin patterns never match",
			zap.Strings("providers", unknown),
		)
	}

	return t
}

func unknownEntries(cfg *config.ProviderConfig) []string {
	var unknown []string
	for _, id := range cfg.Providers() {
		if !providers.IsKnown(id) {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

// RuleInfo is a display snapshot of one compiled rule. The proxy URL is
// redacted; snapshots exist for logs and the inspect API, which must never
// leak credentials.
type RuleInfo struct {
	Provider string `json:"provider"`
	Pattern  string `json:"pattern"`
	ProxyURL string `json:"proxy_url"`
}

// Rules returns a redacted snapshot of the compiled rules in scan order.
func (t *Table) Rules() []RuleInfo {
	infos := make([]RuleInfo, len(t.rules))
	for i, r := range t.rules {
		infos[i] = RuleInfo{
			Provider: r.provider,
			Pattern:  r.pattern,
			ProxyURL: proxyurl.Redact(r.proxyURL),
		}
	}
	return infos
}

// Len returns the number of compiled rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// Generation returns the unique id assigned when the table was compiled.
func (t *Table) Generation() string {
	return t.generation
}

// CompiledAt returns when the table was built.
func (t *Table) CompiledAt() time.Time {
	return t.compiledAt
}
