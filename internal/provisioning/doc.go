// Package provisioning drives the lifecycle of an ephemeral GitHub Actions
// runner on a Hetzner Cloud server.
//
// # Create
//
// A registration token is requested from GitHub and embedded into the
// cloud-init payload. Server creation is retried while the provider reports a
// capacity shortage. The label and server_id outputs are written as soon as
// the server is accepted. The reconciler then polls the server until it is
// running and the runner list until the runner has registered.
//
// # Delete
//
// The server is deleted first, retrying every failure. The runner is then
// looked up by name and deregistered.
//
// # Errors
//
// Every failure is returned as an *Error carrying a Kind. Nothing is rolled
// back; a failed create leaves its server for the delete step to remove.
package provisioning
