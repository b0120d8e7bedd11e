// Package kvctl implements the kvctl command line: direct put/get/delete/merge
// against a local store, destroy, a write benchmark, and a serve command that
// exposes health and metrics over HTTP.
package kvctl
