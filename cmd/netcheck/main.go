// Command netcheck screens an energy model's commodity network for orphaned
// technologies and reports the processes that can stay in the model.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitClean       = 0
	exitPruned      = 1
	exitError       = 2
	exitUnsupported = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// exitStatus carries a non-zero exit code out of a command that otherwise
// succeeded.
type exitStatus struct {
	code int
}

func (e *exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitClean
	}
	var status *exitStatus
	if errors.As(err, &status) {
		return status.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "netcheck",
		Short: "Find and prune orphaned technologies in an energy model network",
		Long: `netcheck traces every commodity demand back to the model's source
commodities, removes technologies that cannot take part in a
source-to-demand chain, and reports what remains viable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "path to a netcheck YAML config")
	pf.StringVar(&opts.dataset, "dataset", "", "path to a YAML model dataset")
	pf.StringVar(&opts.databaseURL, "database-url", "", "postgres URL of the model database")
	pf.BoolVar(&opts.strict, "strict", false, "fail when a demand cannot be supplied")
	pf.IntVar(&opts.parallel, "parallel", 0, "number of regions analyzed concurrently")
	pf.StringVar(&opts.separator, "separator", "", "substring marking exchange regions")
	pf.StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newAnalyzeCmd(opts), newFiltersCmd(opts))
	return root
}
