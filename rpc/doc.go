// Package rpc lets tsched validate input documents on a remote server.
//
// The package is organized into several subpackages:
//
//   - common: The Message protocol, configuration structures and logging.
//
//   - transport: Network communication abstractions. The http implementation
//     serves requests on POST /rpc and metrics on GET /metrics.
//
//   - serializer: Message serialization (Binary, JSON, GOB).
//
//   - client: The IChecker client that sends input documents to a server.
//
//   - server: The server that dispatches requests to one adapter per message type.
package rpc
