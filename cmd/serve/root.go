package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ValentinKolb/tsched/cmd/util"
	"github.com/ValentinKolb/tsched/rpc/common"
	"github.com/ValentinKolb/tsched/rpc/server"
	"github.com/spf13/cobra"
)

var (
	ServeCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the tsched server",
		Long: `Start the tsched server with the specified configuration.

The server validates input documents sent with "tsched remote check" and exposes
Prometheus metrics on /metrics. The configuration can be set via command line flags
or environment variables. The format of the environment variables is TSCHED_<flag>
(e.g. TSCHED_CACHE_SIZE=4096)`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return util.BindCommandFlags(cmd) },
		RunE:    run,
	}
)

func init() {
	defaults := common.DefaultServerConfig()

	key := "endpoint"
	ServeCmd.Flags().String(key, defaults.Endpoint, util.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/tsched.sock for unix)"))

	key = "timeout"
	ServeCmd.Flags().Int64(key, defaults.TimeoutSecond, util.WrapString("Read and write timeout of a request in seconds"))

	key = "max-request-kb"
	ServeCmd.Flags().Int64(key, defaults.MaxRequestBytes/1024, util.WrapString("Maximum size of a request body in KiB"))

	key = "cache-size"
	ServeCmd.Flags().Int(key, defaults.CacheSize, util.WrapString("Number of check results kept in the result cache (0 disables the cache)"))
}

// run starts the tsched server and blocks until it is stopped by SIGINT or SIGTERM
func run(cmd *cobra.Command, _ []string) error {
	config := util.GetServerConfig()
	if config.LogLevel == "" {
		config.LogLevel = util.DefaultLogLevel
	}

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}
	t, err := util.GetServerTransport()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(*config, t, s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := serv.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to stop server: %v\n", err)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "tsched server listening on %s\n", config.Endpoint)
	return serv.Serve()
}
