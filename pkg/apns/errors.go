package apns

import (
	"errors"
	"fmt"
	"time"

	"github.com/sideshow/apns2"
)

var (
	// ErrNotConfigured is returned when a pool or client is requested before
	// a Configuration was set.
	ErrNotConfigured = errors.New("apns: not configured, set a configuration before use")

	ErrInvalidEnvironment = errors.New("apns: invalid environment")
	ErrMissingAuth        = errors.New("apns: authentication method is required")
	ErrMissingTopic       = errors.New("apns: topic is required")
	ErrInvalidTimeout     = errors.New("apns: timeout must not be negative")
	ErrInvalidAuthType    = errors.New("apns: auth type must be \"token\" or \"certificate\"")
	ErrLoadConfig         = errors.New("apns: failed to load configuration")
	ErrLoadCredentials    = errors.New("apns: failed to load credentials")

	ErrEmptyDeviceToken = errors.New("apns: device token is required")

	// ErrDeviceUnregistered is returned without contacting APNs when the
	// token store knows the device token is no longer valid.
	ErrDeviceUnregistered = errors.New("apns: device token is unregistered")
)

// ResponseError is a notification rejected by APNs. The connection that
// carried it is still usable.
type ResponseError struct {
	StatusCode int
	Reason     string
	APNsID     string
	// Timestamp is set for 410 responses: the last time APNs saw the token valid.
	Timestamp time.Time
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("apns: notification rejected: %d %s", e.StatusCode, e.Reason)
}

// Unregistered reports whether the device token is no longer active.
func (e *ResponseError) Unregistered() bool {
	return e.StatusCode == 410 || e.Reason == apns2.ReasonUnregistered
}

// ConnectionClosing reports whether APNs is about to close the connection
// that carried the notification.
func (e *ResponseError) ConnectionClosing() bool {
	return e.Reason == apns2.ReasonShutdown || e.Reason == apns2.ReasonIdleTimeout || e.StatusCode == 503
}
