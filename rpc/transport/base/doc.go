// Package base implements the framed client and server transport shared by
// the tcp and unix transports. The network specific parts (dialing,
// listening, socket options) are injected through IClientConnector and
// IServerConnector.
//
// Every request and response is one frame:
//
//	8 bytes  requestID (uint64, big endian)
//	4 bytes  payload length (uint32, big endian)
//	N bytes  payload (a serialized common.Message)
//
// The client keeps ConnectionsPerEndpoint connections per endpoint and picks
// one per request round-robin. Requests on one connection are multiplexed:
// each gets a unique requestID and a reader goroutine hands every response to
// the request waiting for that ID. When the server drops a connection, all
// requests waiting on it fail (and are retried on the next connection) and
// the connection is re-established.
//
// The server handles every connection in its own goroutine and runs up to
// maxWorkersPerConn requests of a connection concurrently. Request buffers are
// pooled. A frame larger than ServerConfig.MaxRequestBytes closes the
// connection. Stream transports have no metrics endpoint.
package base
