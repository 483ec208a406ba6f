package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/AnyUserName/stackblur/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stackblur",
	Short: "Fast in-place stack blur for images and raw 8-bit planes",
	Long: `stackblur blurs images with a two-pass fixed-point stack blur,
a tent-kernel approximation of a Gaussian that runs in O(width*height)
regardless of radius.

Blurs whole directories into content-addressed outputs plus a manifest,
raw single-channel plane files, or jobs pulled from a Redis queue.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logging.SetLogger(logging.NewCLI(cmd.ErrOrStderr(), verbose))
	},
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stackblur: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"stackblur %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	logging.Logger().Debug(fmt.Sprintf(format, args...))
}
