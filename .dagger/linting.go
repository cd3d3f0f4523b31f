package main

import (
	"context"
	"fmt"

	"dagger/detour/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// lintOpts returns the common GolangcilintOpts used by both CheckLint and FixLint.
// It layers golangci-lint on top of goContainer() so the Go caches are
// already in place.
func (d *Detour) lintOpts() dagger.GolangcilintOpts {
	base := d.goContainer().
		WithExec([]string{
			"go",
			"install",
			fmt.Sprintf("github.com/golangci/golangci-lint/v2/cmd/golangci-lint@%s", golangciLintVersion),
		})

	return dagger.GolangcilintOpts{
		BaseCtr: base,
		Config:  d.Source.File(".golangci.yml"),
	}
}

// CheckLint runs golangci-lint against the detour source code without applying fixes.
func (d *Detour) CheckLint(ctx context.Context) (string, error) {
	return dag.Golangcilint(d.Source, d.lintOpts()).Check(ctx)
}

// FixLint runs golangci-lint against the detour source code with --fix, applying
// automatic fixes where possible, and returns the modified source directory.
func (d *Detour) FixLint(ctx context.Context) *dagger.Directory {
	return dag.Golangcilint(d.Source, d.lintOpts()).Lint()
}
