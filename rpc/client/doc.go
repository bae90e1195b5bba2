// Package client implements the RPC client of the tsched server.
//
// NewRPCChecker returns an IChecker that sends input documents to a remote
// server and returns the verdicts and audit trails computed there. Errors
// reported by the server are returned as *RemoteError; transport and
// serialization failures are returned as plain errors.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:     []string{"http://localhost:8080"},
//	  TimeoutSecond: 5,
//	  RetryCount:    3,
//	}
//
//	checker, err := client.NewRPCChecker(config, http.NewHttpClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//	  ...
//	}
//	defer checker.Close()
//
//	result, err := checker.Check(input, "text", "noop")
//	for _, line := range result.Verdicts {
//	  fmt.Println(line)
//	}
//
// Thread Safety:
//
//	The checker is safe for concurrent use if its transport is.
package client
