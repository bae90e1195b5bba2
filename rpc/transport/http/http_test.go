package http

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/ValentinKolb/tsched/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer starts an echo server on a random local port and returns its address
func startServer(t *testing.T, config common.ServerConfig) string {
	t.Helper()
	return startPrefixServer(t, config, "echo:")
}

// startPrefixServer is startServer with a custom response prefix
func startPrefixServer(t *testing.T, config common.ServerConfig, prefix string) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewHttpServerTransport()
	server.RegisterHandler(func(req []byte) []byte {
		return append([]byte(prefix), req...)
	})
	server.RegisterMetrics(func(w io.Writer) {
		fmt.Fprintln(w, "tsched_checks_total 3")
	})

	done := make(chan error, 1)
	go func() { done <- server.Serve(listener, config) }()
	t.Cleanup(func() {
		require.NoError(t, server.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return listener.Addr().String()
}

func connect(t *testing.T, endpoints ...string) *httpClientTransport {
	t.Helper()
	client := NewHttpClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: endpoints, TimeoutSecond: 5, RetryCount: 2}))
	t.Cleanup(func() { _ = client.Close() })
	return client.(*httpClientTransport)
}

func TestSendAndReceive(t *testing.T) {
	addr := startServer(t, common.ServerConfig{TimeoutSecond: 5, LogLevel: "debug"})
	client := connect(t, addr)

	resp, err := client.Send([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "echo:hello", string(resp))
}

func TestMetricsEndpoint(t *testing.T) {
	addr := startServer(t, common.ServerConfig{TimeoutSecond: 5})

	resp, err := http.Get("http://" + addr + MetricsPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "tsched_checks_total 3")
}

func TestRequestSizeLimit(t *testing.T) {
	addr := startServer(t, common.ServerConfig{TimeoutSecond: 5, MaxRequestBytes: 8})

	resp, err := http.Post("http://"+addr+RPCPath, "application/octet-stream", bytes.NewReader(make([]byte, 64)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	_, err = connect(t, addr).Send(make([]byte, 64))
	assert.ErrorContains(t, err, "413")
}

func TestRetriesOnNextEndpoint(t *testing.T) {
	addr := startServer(t, common.ServerConfig{TimeoutSecond: 5})

	// reserve a port nobody listens on
	dead, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadAddr := dead.Addr().String()
	require.NoError(t, dead.Close())

	client := connect(t, "http://"+deadAddr, addr)
	for i := 0; i < 4; i++ {
		resp, err := client.Send([]byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "echo:x", string(resp))
	}
}

func TestRoundRobinStartsAtFirstEndpoint(t *testing.T) {
	first := startPrefixServer(t, common.ServerConfig{TimeoutSecond: 5}, "first:")
	second := startPrefixServer(t, common.ServerConfig{TimeoutSecond: 5}, "second:")

	client := connect(t, first, second)
	var got []string
	for i := 0; i < 4; i++ {
		resp, err := client.Send([]byte("x"))
		require.NoError(t, err)
		got = append(got, string(resp))
	}
	assert.Equal(t, []string{"first:x", "second:x", "first:x", "second:x"}, got)
}

func TestClientErrors(t *testing.T) {
	client := NewHttpClientTransport()
	_, err := client.Send([]byte("x"))
	assert.Error(t, err, "not connected")

	assert.Error(t, client.Connect(common.ClientConfig{}), "no endpoints")
}
