// Package storage is the application-lifetime key/value store the rest of
// apnskit hangs long-lived objects on.
//
// Values live in typed slots addressed by *Key[T]:
//
//	var configKey = storage.NewKey[apns.Configuration]("apns.configuration")
//
//	_ = storage.Set(s, configKey, cfg, nil)
//	cfg, ok := storage.Get(s, configKey)
//
// A value may carry a shutdown hook. Shutdown runs the hooks in reverse
// registration order, exactly once, which is how connection pools get closed
// when the application stops.
//
// Locks provides named mutexes for check-lock-recheck initialisation of
// values that are expensive to build.
package storage
