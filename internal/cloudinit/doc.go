// Package cloudinit renders the cloud-init user data that turns a fresh
// server into a registered GitHub Actions runner.
//
// The document is produced from a text template. The installer script and the
// optional pre-runner script are embedded base64-encoded as write_files
// entries, and runcmd installs, configures and starts the runner.
//
// See https://cloudinit.readthedocs.io/en/latest/reference/modules.html
package cloudinit
