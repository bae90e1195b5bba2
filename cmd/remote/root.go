package remote

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/tsched/cmd/util"
	"github.com/ValentinKolb/tsched/lib/parser"
	"github.com/ValentinKolb/tsched/lib/sink"
	"github.com/ValentinKolb/tsched/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	checker client.IChecker

	// RemoteCommands represents the command group talking to a tsched server
	RemoteCommands = &cobra.Command{
		Use:                "remote",
		Short:              "Validate schedules on a tsched server",
		PersistentPreRunE:  setupClient,
		PersistentPostRunE: closeClient,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Send an input file to the server and print the verdicts",
		Long: `Send an input file to the server and print one verdict line per plan.

With --output the verdicts and audit trails are also written to the given directory,
in the same layout as "tsched check".`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checker.Ping(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pong")
			return nil
		},
	}
)

func init() {
	// Add common RPC flags to the remote command
	util.SetupRPCClientFlags(RemoteCommands)

	key := "input"
	checkCmd.Flags().StringP(key, "i", "", util.WrapString("The input file (text or yaml)"))

	key = "output"
	checkCmd.Flags().StringP(key, "o", "", util.WrapString("Optional output directory for the verdict and audit files"))

	key = "format"
	checkCmd.Flags().String(key, "auto", util.WrapString("The input format (auto, text, yaml). auto detects yaml by the file extension"))

	key = "commit-policy"
	checkCmd.Flags().String(key, "noop", util.WrapString("What a commit does (noop, reset)"))

	// Add subcommands
	RemoteCommands.AddCommand(checkCmd)
	RemoteCommands.AddCommand(pingCmd)
}

// setupClient initializes the RPC checker client
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetClientTransport()
	if err != nil {
		return err
	}

	checker, err = client.NewRPCChecker(*config, t, s)
	return err
}

func closeClient(_ *cobra.Command, _ []string) error {
	if checker == nil {
		return nil
	}
	return checker.Close()
}

// runCheck sends the input file and prints or writes the result
func runCheck(cmd *cobra.Command, _ []string) error {
	path := viper.GetString("input")
	if path == "" {
		return fmt.Errorf("no input file given (use --input)")
	}

	format, err := parser.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}
	if format == parser.FormatAuto {
		format = parser.DetectFormat(path)
	}

	input, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input file %s: %w", path, err)
	}

	result, checkErr := checker.Check(input, string(format), viper.GetString("commit-policy"))
	for _, v := range result.Verdicts {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	if checkErr != nil {
		return checkErr
	}

	if dir := viper.GetString("output"); dir != "" {
		return writeResult(dir, result)
	}
	return nil
}

// writeResult writes the verdicts and audit trails of result to dir
func writeResult(dir string, result client.CheckResult) error {
	out, err := sink.NewDirSink(dir)
	if err != nil {
		return err
	}
	for _, v := range result.Verdicts {
		if err := out.WriteVerdict(v); err != nil {
			_ = out.Close()
			return err
		}
	}
	for _, trail := range result.Trails {
		if err := out.WriteAudit(trail.ItemID, trail.Records); err != nil {
			_ = out.Close()
			return err
		}
	}
	return out.Close()
}
