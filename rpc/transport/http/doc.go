// Package http implements the HTTP transport of the tsched RPC system.
//
// The server exposes two routes:
//
//	POST /rpc      serialized request in the body, serialized response in the answer
//	GET  /metrics  server metrics in Prometheus text format
//
// The client sends every request to /rpc of one of the configured endpoints,
// selected round-robin, and retries failed requests on the next endpoint.
//
// Thread Safety:
//
//	The client transport is thread-safe and can be used concurrently. It uses
//	atomic operations for the round-robin counter.
//
// With log level debug every request is logged by a middleware.
package http
