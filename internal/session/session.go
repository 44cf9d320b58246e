// Package session carries the per-request storefront context: the sales
// channel used for pricing and availability, the locale, and the API version
// the client was built against.
//
// A Session is immutable. Operations that need a different channel (a product
// locator or a search carrying a "channel" facet) derive a new context with
// WithChannel instead of changing the session in place, so concurrent
// resolvers of the same request never observe each other's overrides.
package session

import "context"

// Session is the storefront context of one request.
type Session struct {
	Channel string
	Locale  string
	Version string
}

// contextKey is the type for context values to avoid collisions
type contextKey string

// SessionContextKey is the context key for storing the Session
const SessionContextKey contextKey = "storefront.session"

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, s)
}

// FromContext returns the session stored in ctx.
// Returns the zero Session if none was set.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(SessionContextKey).(Session)
	return s
}

// WithChannel derives a context whose session uses channel. An empty channel
// returns ctx unchanged.
func WithChannel(ctx context.Context, channel string) context.Context {
	if channel == "" {
		return ctx
	}
	s := FromContext(ctx)
	s.Channel = channel
	return WithSession(ctx, s)
}

// ChannelOr returns the session channel in ctx, or fallback if none is set.
func ChannelOr(ctx context.Context, fallback string) string {
	if ch := FromContext(ctx).Channel; ch != "" {
		return ch
	}
	return fallback
}
