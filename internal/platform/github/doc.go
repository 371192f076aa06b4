// Package github is a small GitHub REST client and OAuth helper.
//
// The client verifies issues and pull requests before TaskFlow links them
// to tasks, and reads the authenticated user after an OAuth exchange.
// Transient failures (network errors and 5xx responses) are retried with
// exponential backoff; 4xx responses are returned immediately.
package github
