// Package middleware implements the gateway's fixed request pipeline: a
// sequence of http.Handler wrappers, outermost first: request id, metrics
// (recorded by package gateway), access log, CORS,
// compression, response transform, resource filter, IP filter, bot
// filter, cache, circuit breaker, content-length rewrite, then the
// terminal router+dispatcher.
//
// The pipeline is global and config-driven: every middleware inspects the
// matched endpoint's own config block per request to decide whether it
// applies.
package middleware
