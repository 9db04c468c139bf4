// Package main is the entry point for the hcloud-runner CLI.
//
// hcloud-runner provisions an ephemeral Hetzner Cloud server that registers
// itself as a GitHub Actions self-hosted runner, and removes it again once
// the job is done. It runs as the entrypoint of a GitHub Action, reading
// INPUT_* variables, or as a standalone command.
//
// For detailed usage information, run:
//
//	hcloud-runner --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/hcloud-runner/cmd/hcloud-runner/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
