package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const callerKey contextKey = iota

// localCaller identifies requests when authentication is off.
const localCaller = "local"

// getCaller extracts the authenticated caller from context.
func getCaller(ctx context.Context) string {
	v, _ := ctx.Value(callerKey).(string)
	return v
}

// CallerResolver resolves a caller name from a bearer token.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (string, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver CallerResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Protocol handshake stays open
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			header := requestHeader(req)
			if header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			token := strings.TrimSpace(strings.TrimPrefix(header.Get("Authorization"), "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}
			if resolver == nil {
				return nil, fmt.Errorf("unauthorized: no resolver configured")
			}

			caller, err := resolver.ResolveCaller(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if caller == "" {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			ctx = context.WithValue(ctx, callerKey, caller)
			return next(ctx, method, req)
		}
	}
}

// noAuthMiddleware tags every request with a fixed caller.
func noAuthMiddleware(caller string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, callerKey, caller)
			return next(ctx, method, req)
		}
	}
}

// requestHeader returns the HTTP headers of req, or nil for non-HTTP transports.
func requestHeader(req sdkmcp.Request) (header http.Header) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			header = nil
		}
	}()
	extra := req.GetExtra()
	if extra == nil {
		return nil
	}
	return extra.Header
}
