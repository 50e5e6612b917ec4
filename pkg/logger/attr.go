package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Environment records the push environment under the key "apns_env".
func Environment(env string) slog.Attr {
	return slog.String("apns_env", env)
}

// PoolKey records the pool identifier under the key "pool".
func PoolKey(key any) slog.Attr {
	return slog.Any("pool", key)
}

// APNsID records the notification identifier under the key "apns_id".
// Empty ids produce an empty Attr.
func APNsID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("apns_id", id)
}

// DeviceToken records a device token under the key "device_token".
// Only the last 8 characters are kept, tokens are credentials.
func DeviceToken(token string) slog.Attr {
	if token == "" {
		return slog.Attr{}
	}
	if len(token) > 8 {
		token = "…" + token[len(token)-8:]
	}
	return slog.String("device_token", token)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
