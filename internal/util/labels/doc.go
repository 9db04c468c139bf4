// Package labels provides consistent labeling for runner servers on Hetzner Cloud.
//
// Labels record which GitHub owner and repository a server was provisioned
// for, so stray runners can be found with a label selector.
package labels
