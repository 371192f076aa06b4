// Package domain contains the core business entities of TaskFlow: projects,
// tasks, and the GitHub items tasks can be linked to. It is independent of
// storage, caching, and delivery.
package domain
