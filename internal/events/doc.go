// Package events provides the in-process project update broker.
//
// Services publish a project after it changes; subscribers registered for
// that project receive it asynchronously on a small worker pool. Delivery is
// best effort: when the job queue is full the delivery is dropped and logged.
//
// The primary components are:
// - ProjectUpdatedEvent: a published project snapshot
// - Broker: the subscriber registry and delivery pool
// - Handler: the callback a subscriber registers
package events
