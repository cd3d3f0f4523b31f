// Detour CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/detour/internal/dagger"
)

// Detour is the main module for the Detour CI/CD pipeline
type Detour struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Detour CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp"]
	source *dagger.Directory,
) *Detour {
	return &Detour{
		Source: source,
	}
}

// goContainer returns an Alpine-based Go container with CGO disabled, the
// module and build caches mounted, and the project source at /src.
//
// It is the shared foundation for tests, builds, and linting.
func (d *Detour) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", d.Source)
}

// Test runs the detour unit tests via "go test"
func (d *Detour) Test(ctx context.Context) (string, error) {
	return d.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
