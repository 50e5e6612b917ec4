// Package apns sends Apple push notifications through pooled HTTP/2
// connections.
//
// The transport itself is github.com/sideshow/apns2; this package decides
// how connections are built, shared and retired:
//
//   - Configuration holds the environment-agnostic settings (authentication
//     method, topic, timeout, logger). FullConfiguration binds it to Sandbox
//     or Production.
//   - Source opens one apns2 client per pooled Connection and plugs into
//     pool.Registry, contributing the timeout and DiscardPolicy.
//   - Client borrows a Connection for each Send. Notifications rejected by
//     APNs return *ResponseError and leave the connection in the pool;
//     transport failures drop it so the next send dials a fresh one.
//
// Configuration can be built in code or loaded from the environment:
//
//	cfg, err := apns.LoadConfig(".env")
//	if err != nil {
//	    return err
//	}
//	conf, err := cfg.Configuration() // reads the .p8 key or certificate
//
// A TokenStore (in memory or Redis) remembers device tokens APNs reported as
// unregistered; Client.Send then fails fast with ErrDeviceUnregistered.
//
// Each Send is traced with OpenTelemetry as an "apns.send" client span.
package apns
