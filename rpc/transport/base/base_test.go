package base

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/tsched/rpc/common"
	"github.com/ValentinKolb/tsched/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

type testServerConnector struct{}

func (c *testServerConnector) GetName() string { return "test" }

func (c *testServerConnector) Listen(common.ServerConfig) (net.Listener, error) {
	return net.Listen("tcp", "127.0.0.1:0")
}

func (c *testServerConnector) UpgradeConnection(net.Conn, common.ServerConfig) error { return nil }

type testClientConnector struct{}

func (c *testClientConnector) GetName() string { return "test" }

func (c *testClientConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", endpoint, timeout)
}

// startServer serves handler on a random local port and returns its address
func startServer(t *testing.T, config common.ServerConfig, handler transport.ServerHandleFunc) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewBaseServerTransport(&testServerConnector{}, 64, 8)
	server.RegisterHandler(handler)

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

func connect(t *testing.T, config common.ClientConfig) transport.IRPCClientTransport {
	t.Helper()
	client := NewBaseClientTransport(&testClientConnector{})
	require.NoError(t, client.Connect(config))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func echo(req []byte) []byte {
	return append([]byte("echo:"), req...)
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func TestSendAndReceive(t *testing.T) {
	addr := startServer(t, common.ServerConfig{TimeoutSecond: 5}, echo)
	client := connect(t, common.ClientConfig{Endpoints: []string{addr}, TimeoutSecond: 5})

	resp, err := client.Send([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "echo:hello", string(resp))

	// payloads larger than the pooled server buffer
	big := make([]byte, 4096)
	for i := range big {
		big[i] = byte('a' + i%26)
	}
	resp, err = client.Send(big)
	require.NoError(t, err)
	assert.Equal(t, "echo:"+string(big), string(resp))

	resp, err = client.Send(nil)
	require.NoError(t, err)
	assert.Equal(t, "echo:", string(resp))
}

func TestConcurrentRequestsAreCorrelated(t *testing.T) {
	// later requests finish first, so responses arrive out of order
	addr := startServer(t, common.ServerConfig{TimeoutSecond: 5}, func(req []byte) []byte {
		d, _ := strconv.Atoi(string(req))
		time.Sleep(time.Duration(d) * time.Millisecond)
		return echo(req)
	})
	client := connect(t, common.ClientConfig{Endpoints: []string{addr}, TimeoutSecond: 5, ConnectionsPerEndpoint: 2})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := strconv.Itoa((20 - i) * 2)
			resp, err := client.Send([]byte(req))
			if assert.NoError(t, err) {
				assert.Equal(t, "echo:"+req, string(resp))
			}
		}(i)
	}
	wg.Wait()
}

func TestOversizedRequestIsRejected(t *testing.T) {
	addr := startServer(t, common.ServerConfig{TimeoutSecond: 5, MaxRequestBytes: 8}, echo)
	client := connect(t, common.ClientConfig{Endpoints: []string{addr}, TimeoutSecond: 5, RetryCount: 3})

	_, err := client.Send(make([]byte, 64))
	assert.Error(t, err)

	// the connection is re-established for the next request
	resp, err := client.Send([]byte("ok"))
	require.NoError(t, err)
	assert.Equal(t, "echo:ok", string(resp))
}

func TestConnectSkipsUnreachableEndpoints(t *testing.T) {
	addr := startServer(t, common.ServerConfig{TimeoutSecond: 5}, echo)

	// reserve a port and close it again, so nothing listens there
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	dead := l.Addr().String()
	require.NoError(t, l.Close())

	client := connect(t, common.ClientConfig{Endpoints: []string{dead, addr}, TimeoutSecond: 1})
	for i := 0; i < 3; i++ {
		resp, err := client.Send([]byte(fmt.Sprint(i)))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("echo:%d", i), string(resp))
	}

	err = NewBaseClientTransport(&testClientConnector{}).Connect(common.ClientConfig{Endpoints: []string{dead}, TimeoutSecond: 1})
	assert.Error(t, err)

	err = NewBaseClientTransport(&testClientConnector{}).Connect(common.ClientConfig{})
	assert.Error(t, err)
}

func TestSendAfterClose(t *testing.T) {
	addr := startServer(t, common.ServerConfig{TimeoutSecond: 5}, echo)
	client := NewBaseClientTransport(&testClientConnector{})
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{addr}, TimeoutSecond: 5}))
	require.NoError(t, client.Close())

	_, err := client.Send([]byte("late"))
	assert.Error(t, err)
}

func TestServeWithoutHandler(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	err = NewBaseServerTransport(&testServerConnector{}, 64, 1).Serve(listener, common.ServerConfig{})
	assert.Error(t, err)
}
