// Package middleware provides the HTTP middleware chain for the
// gateway: request ID assignment, structured request logging, panic
// recovery, CORS, and per-session rate limiting. Middleware compose
// outermost-first:
//
//	handler = middleware.Recovery(
//		middleware.RequestID(
//			middleware.Logging(
//				middleware.RateLimit(limiter, m)(mux))))
package middleware
