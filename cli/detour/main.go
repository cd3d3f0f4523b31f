package main

import (
	"os"

	detourcmder "github.com/detour-dev/detour/cmd/detour"
)

func main() {
	cmd := detourcmder.NewDetourCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
