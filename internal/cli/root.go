package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dshills/gitdump/internal/fsio"
	"github.com/dshills/gitdump/internal/gitctx"
)

const version = "1.0.0"

// Exit codes
const (
	ExitSuccess    = 0
	ExitError      = 1
	ExitUsageError = 2
)

// Flags shared by the dump command and its subcommands.
var (
	flagAll     bool
	flagVerbose bool
	flagOut     string
	flagRepo    string
)

var rootCmd = &cobra.Command{
	Use:   "git-dump-commit [flags] [tag-glob]",
	Short: "Dump git commits as patch files grouped by tag",
	Long: `git-dump-commit writes every commit of the current branch as a standalone
patch file. Patches are grouped in one directory per tag (the earliest tag
containing the commit), commits not yet tagged go to "unreleased".

Re-running only dumps commits added since the previous run. With a tag glob
such as 'v2.*' only commits released under a matching tag are dumped.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runDump,
}

// Run executes the root command and returns an exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	exitCode = ExitSuccess
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		code := exitCodeFor(err)
		if code == ExitUsageError {
			cmd.PrintErrf("Run '%s --help' for usage.\n", cmd.CommandPath())
		}
		return code
	}
	return exitCode
}

// UsageError reports invalid arguments or configuration.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// exitCodeFor maps an error returned from Execute. Cobra's own argument and
// flag errors are usage errors.
func exitCodeFor(err error) int {
	var ue *UsageError
	switch {
	case errors.As(err, &ue):
		return ExitUsageError
	case errors.Is(err, gitctx.ErrRepository), errors.Is(err, fsio.ErrIO):
		return ExitError
	default:
		return ExitUsageError
	}
}

// fail reports a runtime error and sets the exit code without triggering
// cobra's usage handling.
func fail(cmd *cobra.Command, err error) error {
	cmd.PrintErrf("Error: %v\n", err)
	exitCode = ExitError
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print git-dump-commit version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("git-dump-commit version %s\n", version)
	},
}

// resetFlags restores every flag of every command to its default. Commands
// are package-level, so repeated executions in one process need it.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagAll, "all", "a", false, "Dump into one flat directory instead of one directory per tag")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log progress to stderr")
	pf.StringVarP(&flagOut, "out", "o", "", "Output directory (default from config: DUMP-COMMIT)")
	pf.StringVarP(&flagRepo, "repo", "C", ".", "Repository path")

	addDumpFlags(rootCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cursorCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)
}
