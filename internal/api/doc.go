// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts the task, selection, cache and GitHub
// services to HTTP, translating service errors to status codes.
package api
