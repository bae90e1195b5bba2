// Package unix implements the framed RPC transport (see package base) over
// Unix domain sockets, for clients on the same machine as the server.
//
// Endpoints are socket paths, an optional unix:// prefix is ignored. An
// existing file at the socket path is removed before listening.
package unix
