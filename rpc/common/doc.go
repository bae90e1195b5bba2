// Package common provides the data structures shared by the tsched RPC
// client, server and transports.
//
// The package focuses on:
//   - Message protocol definition for client/server communication
//   - Configuration structures for client and server components
//   - Custom logging implementation integrated with Dragonboat's logger facade
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication. A check request
//     carries an input document, its format and the commit policy; the
//     response carries one verdict line per plan and the audit trail of every
//     data item.
//
//   - MessageType: Enumeration of all supported message types.
//
//   - ServerConfig / ClientConfig: configuration of the server and client,
//     with String methods for startup logging.
//
//   - Logger: InitLoggers installs a logger factory that writes
//     "LEVEL | name | message" lines and sets every tsched logger to the
//     configured level.
package common
