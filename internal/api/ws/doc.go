// Package ws streams project updates to WebSocket clients. Each connection
// follows one project; updates published for it are written as
// {"event":"project.updated","data":<project>} messages.
package ws
