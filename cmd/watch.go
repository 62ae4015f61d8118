package cmd

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/argsinto"
	"github.com/gnolang/argsinto/formatter"
	"github.com/gnolang/argsinto/internal"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Rewrite the marked functions every time a file is saved",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := argsinto.New(".", cfgFile, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		return engine.Watch(ctx, args, watchHandler(cmd.OutOrStdout(), logger))
	},
}

// watchHandler prints what every run did.
func watchHandler(out io.Writer, logger *zap.Logger) func(*internal.Result, error) {
	return func(res *internal.Result, err error) {
		if err == nil {
			if res.Changed {
				fmt.Fprintf(out, "%s: rewrote %d function(s)\n", res.Filename, len(res.Funcs))
			}
			return
		}
		issues := argsinto.Issues(err)
		if len(issues) == 0 {
			logger.Error("Error processing file", zap.Error(err))
			return
		}
		src, rerr := internal.ReadSourceCode(issues[0].Filename)
		if rerr != nil {
			logger.Error("Error reading source file", zap.String("file", issues[0].Filename), zap.Error(rerr))
			return
		}
		fmt.Fprint(out, formatter.GenerateFormattedIssue(issues, src))
	}
}
