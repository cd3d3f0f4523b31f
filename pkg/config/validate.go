package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/detour-dev/detour/pkg/proxyurl"
)

// ErrInvalidConfig is wrapped by New when the raw configuration fails
// validation. Validation is all-or-nothing: one bad entry rejects the whole
// configuration so it is never partially applied.
var ErrInvalidConfig = errors.New("invalid provider configuration")

// debugKey is the one reserved key in the flat configuration mapping.
const debugKey = "debug"

// Problem describes a single configuration violation, keyed by the entry
// that caused it.
type Problem struct {
	Key     string
	Message string
}

func (p Problem) String() string {
	return p.Key + ": " + p.Message
}

// Problems checks every key of a raw configuration mapping and returns one
// Problem per violation, sorted by key. The rules: "debug" must be a
// boolean, every other value must be a string that parses as a proxy URL.
func Problems(raw map[string]any) []Problem {
	var problems []Problem

	for key, value := range raw {
		if key == debugKey {
			if _, ok := value.(bool); !ok {
				problems = append(problems, Problem{
					Key:     key,
					Message: fmt.Sprintf("expected a boolean, got %T", value),
				})
			}
			continue
		}

		s, ok := value.(string)
		if !ok {
			problems = append(problems, Problem{
				Key:     key,
				Message: fmt.Sprintf("expected a proxy URL string, got %T", value),
			})
			continue
		}

		if _, err := proxyurl.Parse(s); err != nil {
			problems = append(problems, Problem{
				Key:     key,
				Message: err.Error(),
			})
		}
	}

	sort.Slice(problems, func(i, j int) bool { return problems[i].Key < problems[j].Key })
	return problems
}

// Validate reports whether the raw configuration mapping is acceptable as a
// whole.
func Validate(raw map[string]any) bool {
	return len(Problems(raw)) == 0
}

// New builds a ProviderConfig from a raw mapping. It fails with a wrapped
// ErrInvalidConfig listing every violation when validation does not pass.
func New(raw map[string]any) (*ProviderConfig, error) {
	problems := Problems(raw)
	if len(problems) > 0 {
		msgs := make([]string, len(problems))
		for i, p := range problems {
			msgs[i] = p.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}

	cfg := &ProviderConfig{
		Entries: make(map[string]string, len(raw)),
	}
	for key, value := range raw {
		if key == debugKey {
			cfg.Debug = value.(bool)
			continue
		}
		cfg.Entries[key] = value.(string)
	}

	return cfg, nil
}
