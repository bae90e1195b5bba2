// Package serializer provides message serialization for the tsched RPC
// system. It defines a common interface and multiple implementations for
// serializing and deserializing messages between client and server.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Custom binary format. A flag byte records which
//     optional fields are present and only those are encoded. Verdict lines and
//     audit trails are encoded as counted lists of length prefixed strings.
//
//   - gobSerializerImpl: Implementation using Go's built-in gob encoding.
//
//   - jsonSerializerImpl: Implementation using JSON encoding, useful for debugging
//     or for clients written in other languages (e.g. curl).
//
// New returns a serializer by name (json, gob, binary); client and server must
// use the same one.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	serializer := serializer.NewBinarySerializer()
//	data, err := serializer.Serialize(*common.NewCheckRequest(input, "text", "noop"))
//	// ... send data ...
//	var resp common.Message
//	err = serializer.Deserialize(respData, &resp)
package serializer
