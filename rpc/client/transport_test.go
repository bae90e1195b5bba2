package client

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/ValentinKolb/tsched/rpc/common"
	"github.com/ValentinKolb/tsched/rpc/serializer"
	"github.com/ValentinKolb/tsched/rpc/server"
	"github.com/ValentinKolb/tsched/rpc/transport"
	"github.com/ValentinKolb/tsched/rpc/transport/http"
	"github.com/ValentinKolb/tsched/rpc/transport/tcp"
	"github.com/ValentinKolb/tsched/rpc/transport/unix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transportCase is one network transport the checker can run over
type transportCase struct {
	name     string
	server   func() transport.IRPCServerTransport
	client   func() transport.IRPCClientTransport
	listen   func(t *testing.T) (net.Listener, string)
	endpoint func(addr string) string
}

func tcpListener(t *testing.T) (net.Listener, string) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return l, l.Addr().String()
}

var transportCases = []transportCase{
	{
		name:     "http",
		server:   http.NewHttpServerTransport,
		client:   http.NewHttpClientTransport,
		listen:   tcpListener,
		endpoint: func(addr string) string { return "http://" + addr },
	},
	{
		name:     "tcp",
		server:   tcp.NewTCPDefaultServerTransport,
		client:   tcp.NewTCPClientTransport,
		listen:   tcpListener,
		endpoint: func(addr string) string { return addr },
	},
	{
		name:   "unix",
		server: unix.NewUnixDefaultServerTransport,
		client: unix.NewUnixClientTransport,
		listen: func(t *testing.T) (net.Listener, string) {
			path := filepath.Join(t.TempDir(), "tsched.sock")
			l, err := net.Listen("unix", path)
			require.NoError(t, err)
			return l, path
		},
		endpoint: func(addr string) string { return "unix://" + addr },
	},
}

// serveOver starts a tsched server on the transport of tc and returns a connected checker
func serveOver(t *testing.T, tc transportCase, s serializer.IRPCSerializer) IChecker {
	t.Helper()

	config := common.DefaultServerConfig()
	config.TimeoutSecond = 5
	st := tc.server()
	srv := server.NewRPCServer(config, st, s)
	st.RegisterHandler(srv.HandleRequest)

	listener, addr := tc.listen(t)
	done := make(chan error, 1)
	go func() { done <- st.Serve(listener, config) }()
	t.Cleanup(func() {
		require.NoError(t, srv.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	checker, err := NewRPCChecker(common.ClientConfig{
		Endpoints:     []string{tc.endpoint(addr)},
		TimeoutSecond: 5,
		RetryCount:    2,
	}, tc.client(), s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = checker.Close() })
	return checker
}

func TestCheckOverTransports(t *testing.T) {
	for _, tc := range transportCases {
		for _, name := range []string{"json", "gob", "binary"} {
			t.Run(tc.name+"/"+name, func(t *testing.T) {
				s, err := serializer.New(name)
				require.NoError(t, err)
				checker := serveOver(t, tc, s)

				require.NoError(t, checker.Ping())

				result, err := checker.Check([]byte(input), "text", "noop")
				require.NoError(t, err)
				assert.Equal(t, []string{"S1-ROLLBACK-1", "S2-OK"}, result.Verdicts)
				assert.False(t, result.Cached)
				require.Len(t, result.Trails, 2)
				assert.Equal(t, "A", result.Trails[0].ItemID)
				assert.Equal(t, []string{"S1,write,0", "S2,read,0"}, result.Trails[0].Records)
				assert.Equal(t, []string{"S2,write,1"}, result.Trails[1].Records)

				result, err = checker.Check([]byte(input), "text", "noop")
				require.NoError(t, err)
				assert.True(t, result.Cached)

				result, err = checker.Check([]byte(input+"S3 - r9(A)\n"), "text", "noop")
				var remote *RemoteError
				require.ErrorAs(t, err, &remote)
				assert.Equal(t, []string{"S1-ROLLBACK-1", "S2-OK"}, result.Verdicts)
			})
		}
	}
}
