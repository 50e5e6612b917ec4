package apnskit

import "context"

// ContextKey is a key for request context values.
// Declare it as a package-level variable.
type ContextKey struct{ name string }

// NewContextKey creates a new context key. The name is for diagnostics.
func NewContextKey(name string) *ContextKey {
	return &ContextKey{name}
}

func (k *ContextKey) String() string {
	return "apnskit context key " + k.name
}

// ContextValue retrieves a typed value from the context.
// Returns the zero value of T if the key is not present or has a different type.
//
// Example:
//
//	var tenantKey = apnskit.NewContextKey("tenant")
//
//	ctx = context.WithValue(ctx, tenantKey, "acme")
//	tenant := apnskit.ContextValue[string](ctx, tenantKey)
func ContextValue[T any](ctx context.Context, key any) T {
	val, _ := ctx.Value(key).(T)
	return val
}
