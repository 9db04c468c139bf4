// Package config loads and validates the runner configuration.
//
// Inputs are layered with viper: built-in defaults, then INPUT_* environment
// variables (the GitHub Actions input convention), then command-line flags.
// GitHub workflow context (repository, API URL, output files) is read from the
// variables the Actions runner exports.
//
// [Load] returns a [RunnerConfig] or the first [ValidationError] found. A
// RunnerConfig is not modified after Load returns.
package config
