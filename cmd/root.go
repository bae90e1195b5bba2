package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/tsched/cmd/check"
	"github.com/ValentinKolb/tsched/cmd/remote"
	"github.com/ValentinKolb/tsched/cmd/serve"
	"github.com/ValentinKolb/tsched/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tsched",
		Short: "timestamp ordering schedule validator",
		Long: fmt.Sprintf(`tsched (v%s)

Validates transaction schedules with the basic timestamp ordering protocol.
Schedules can be checked locally or sent to a tsched server.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tsched",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tsched v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(check.CheckCmd)
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(remote.RemoteCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix). Only http exposes /metrics"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, util.DefaultLogLevel, util.WrapString("level at which logs are written to stderr (debug, info, warn, error)"))
	key = "config"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("optional config file (yaml, toml, json), flags and environment variables take precedence"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
