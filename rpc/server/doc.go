// Package server implements the tsched RPC server.
//
// Every request is decoded with the configured serializer and handed to the
// IRPCServerAdapter registered for its message type:
//
//   - MsgTCheck: parses the input document, validates all schedule plans with a
//     fresh scheduler and returns the verdicts and audit trails. Results are
//     cached by input, format and commit policy.
//   - MsgTPing: answers with a success message.
//
// Usage Example:
//
//	config := common.DefaultServerConfig()
//
//	s := server.NewRPCServer(
//	  config,
//	  http.NewHttpServerTransport(),
//	  serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	Requests are handled concurrently. Each check request owns its registries
//	and scheduler, only the result cache and the metrics are shared.
package server
