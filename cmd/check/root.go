package check

import (
	"fmt"

	"github.com/ValentinKolb/tsched/cmd/util"
	"github.com/ValentinKolb/tsched/lib/parser"
	"github.com/ValentinKolb/tsched/lib/processor"
	"github.com/ValentinKolb/tsched/lib/scheduler"
	"github.com/ValentinKolb/tsched/lib/sink"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// CheckCmd validates an input file locally
	CheckCmd = &cobra.Command{
		Use:   "check",
		Short: "Validate all schedule plans of an input file",
		Long: `Validate all schedule plans of an input file with the timestamp ordering protocol.

One verdict line per plan ("<id>-OK" or "<id>-ROLLBACK-<position>") is written to <output>/out.txt
and the audit trail of every data item to <output>/<item>.txt. The environment variables
TSCHED_<FLAG> (e.g. TSCHED_COMMIT_POLICY=reset) can be used instead of flags.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return util.BindCommandFlags(cmd) },
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	key := "input"
	CheckCmd.Flags().StringP(key, "i", "", util.WrapString("The input file (text or yaml)"))

	key = "output"
	CheckCmd.Flags().StringP(key, "o", "out", util.WrapString("The output directory, created if missing"))

	key = "format"
	CheckCmd.Flags().String(key, "auto", util.WrapString("The input format (auto, text, yaml). auto detects yaml by the file extension"))

	key = "commit-policy"
	CheckCmd.Flags().String(key, "noop", util.WrapString("What a commit does (noop: nothing, reset: reset the timestamps of all data items)"))

	key = "audit"
	CheckCmd.Flags().Bool(key, true, util.WrapString("Write the audit trail of every data item"))

	key = "stats"
	CheckCmd.Flags().Bool(key, false, util.WrapString("Print batch statistics after the run"))
}

// run parses the input, validates all plans and writes the results
func run(cmd *cobra.Command, _ []string) error {
	input := viper.GetString("input")
	if input == "" {
		return fmt.Errorf("no input file given (use --input)")
	}

	format, err := parser.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}
	policy, err := scheduler.ParseCommitPolicy(viper.GetString("commit-policy"))
	if err != nil {
		return err
	}

	in, err := parser.ParseFile(input, format)
	if err != nil {
		return err
	}

	items, txs := in.Registries()
	p := processor.NewScheduleProcessor(scheduler.NewScheduler(items, txs, &scheduler.Options{
		CommitPolicy: policy,
		Audit:        viper.GetBool("audit"),
	}))

	out, err := sink.NewDirSink(viper.GetString("output"))
	if err != nil {
		return err
	}

	processErr := p.Process(in.Plans, out)
	closeErr := out.Close()
	if processErr != nil {
		return processErr
	}
	if closeErr != nil {
		return closeErr
	}

	if viper.GetBool("stats") {
		fmt.Fprint(cmd.OutOrStdout(), p.Report())
	}
	return nil
}
