// Package logger builds the *slog.Logger used across apnskit and provides
// attribute helpers so every component logs the same keys.
//
// New selects a text or JSON handler, applies static attributes and wraps the
// handler with ContextHandler, which copies values out of the record's context
// (for example a request id stored by HTTP middleware).
//
//	log := logger.New(
//	    logger.WithService("push-gateway"),
//	    logger.WithContextValue("request_id", requestIDKey),
//	)
//	log.InfoContext(ctx, "notification sent",
//	    logger.Environment("production"),
//	    logger.APNsID(id),
//	    logger.DeviceToken(token),
//	)
//
// Error and Errors return an empty attribute for nil errors, so callers can
// pass them unconditionally. DeviceToken keeps only the token suffix.
package logger
