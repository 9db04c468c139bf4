// Package github is a small client for the repository-scoped self-hosted
// runner endpoints of the GitHub REST API, built on go-gh's RESTClient.
//
// Requests are issued against absolute URLs derived from the configured API
// base URL, so the same code talks to github.com, GitHub Enterprise Server
// and test servers.
package github
