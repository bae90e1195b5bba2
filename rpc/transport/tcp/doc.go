// Package tcp implements the framed RPC transport (see package base) over TCP.
//
// Endpoints are host:port addresses, an optional tcp:// prefix is ignored.
// Server side connections have Nagle's algorithm disabled and keep-alive
// enabled.
package tcp
