package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/argsinto"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

// errFailed is returned when some files could not be handled. The details
// have already been printed.
var errFailed = errors.New("argsinto: some files failed")

var rootCmd = &cobra.Command{
	Use:              "argsinto [paths...]",
	Short:            "argsinto - rewrite functions so that their parameters accept convertible arguments",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			// display help when only 'argsinto' is entered
			return cmd.Help()
		}
		// argsinto [path1 path2 ...] behaves like the fix subcommand. cobra
		// only sets the context of the command it executes.
		fixCmd.SetContext(cmd.Context())
		return fixCmd.RunE(fixCmd, args)
	},
}

func initLogger() error {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.DisableStacktrace = true
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := config.Build()
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// Execute runs the command line and returns a non-nil error when the
// process should exit with a failure status.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "configuration file (default is ./"+argsinto.DefaultConfigFile+")")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "timeout for a run")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every rewritten function")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
}
