// Package kit holds the small cross-transport plumbing shared by the HTTP
// and MCP surfaces: request-scoped context keys and the endpoint shape both
// transports decode into.
package kit

import "context"

// Endpoint is a transport-agnostic operation: typed request in, typed
// response out.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right: the first argument is the
// outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

type contextKey string

const (
	RequestIDKey  contextKey = "docsmith_request_id"
	TransportKey  contextKey = "docsmith_transport" // "http", "mcp", "mcp_quic"
	ToolKey       contextKey = "docsmith_tool"      // e.g. "extract-text"
	SessionIDKey  contextKey = "docsmith_session_id"
	RemoteAddrKey contextKey = "docsmith_remote_addr"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}

func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return "http"
}

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

func GetSessionID(ctx context.Context) string {
	v, _ := ctx.Value(SessionIDKey).(string)
	return v
}

func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, RemoteAddrKey, addr)
}

func GetRemoteAddr(ctx context.Context) string {
	v, _ := ctx.Value(RemoteAddrKey).(string)
	return v
}

func WithTool(ctx context.Context, tool string) context.Context {
	return context.WithValue(ctx, ToolKey, tool)
}

func GetTool(ctx context.Context) string {
	v, _ := ctx.Value(ToolKey).(string)
	return v
}
