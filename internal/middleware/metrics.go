package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
)

// RPCRecorder receives one observation per finished RPC.
type RPCRecorder interface {
	RPC(procedure, code string, elapsed time.Duration)
}

// MetricsInterceptor returns a Connect interceptor that records the result
// code and latency of every RPC.
func MetricsInterceptor(rec RPCRecorder) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			rec.RPC(req.Spec().Procedure, code, time.Since(start))
			return resp, err
		}
	}
}
