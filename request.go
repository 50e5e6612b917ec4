package apnskit

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/dmitrymomot/apnskit/pkg/logger"
)

// RequestIDHeader carries the request correlation id in and out.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

var (
	requestAPNSKey = NewContextKey("apns")
	requestIDKey   = NewContextKey("request_id")

	validRequestID = regexp.MustCompile("^[a-zA-Z0-9_-]+$")
)

// RequestAPNS is the per-request view of APNS. It shares the application's
// pools; clients it hands out log through the request logger, tagged with
// the request id.
type RequestAPNS struct {
	*APNS
	requestID string
}

// RequestID returns the id of the request the accessor belongs to.
func (r *RequestAPNS) RequestID() string {
	return r.requestID
}

// Logger returns the request logger.
func (r *RequestAPNS) Logger() *slog.Logger {
	return r.log
}

// Middleware attaches a RequestAPNS to every request. A valid incoming
// X-Request-ID is reused, otherwise a new one is generated; either way it is
// echoed in the response.
func Middleware(app *Application) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if !isValidRequestID(id) {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ra := &RequestAPNS{
				APNS:      &APNS{app: app, log: app.log.With(logger.RequestID(id))},
				requestID: id,
			}

			ctx := context.WithValue(r.Context(), requestIDKey, id)
			ctx = context.WithValue(ctx, requestAPNSKey, ra)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the accessor Middleware stored in ctx, or nil.
func FromContext(ctx context.Context) *RequestAPNS {
	return ContextValue[*RequestAPNS](ctx, requestAPNSKey)
}

// RequestIDFromContext returns the request id Middleware stored in ctx.
func RequestIDFromContext(ctx context.Context) string {
	return ContextValue[string](ctx, requestIDKey)
}

// RequestIDExtractor adds the request id to log records, for use with
// logger.WithContextExtractors.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := RequestIDFromContext(ctx); id != "" {
		return logger.RequestID(id), true
	}
	return slog.Attr{}, false
}

func isValidRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	return validRequestID.MatchString(id)
}
