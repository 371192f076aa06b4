// Package service contains TaskFlow's use cases. It coordinates the stores
// in internal/store, the in-process task cache, the selection store and the
// project update broker.
//
// TaskService is the only owner of a taskcache.Store. The cache itself is
// not safe for concurrent use, so every cache operation goes through the
// service's mutex. Cleanups registered with TaskService.Subscribe therefore
// run while that mutex is held and must not call back into the service.
//
// Session bundles the per-process state (cache, selection, services) and
// tears it down on Close.
package service
