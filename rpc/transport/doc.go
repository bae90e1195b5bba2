// Package transport defines the interfaces for RPC communication between the
// tsched client and server. Transports only move opaque byte slices; encoding
// is the job of the serializer package.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and passes them to the registered handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
// The http subpackage contains the only implementation.
package transport
