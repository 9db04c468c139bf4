// Package hcloud wraps the Hetzner Cloud API for the runner server lifecycle.
//
// # Architecture
//
//   - client.go: client initialization and configuration
//   - server.go: server create, status lookup and delete
//   - request.go: ServerCreateOpts assembly from validated inputs
//   - errors.go: failure classification for the create retry loop
//
// # Retries
//
// The underlying hcloud-go client is built with its own retries disabled.
// Every request is a single attempt, so the attempt budgets enforced by the
// caller are exact.
//
// # Error Classification
//
// A [Classifier] maps a create failure to [ClassTransient] or [ClassFatal].
// [ClassifyByMarkers] matches substrings of the rendered error and
// [ClassifyByErrorCode] inspects the structured hcloud.Error code. Both treat
// resource_unavailable and resource_limit_exceeded as transient by default.
package hcloud
