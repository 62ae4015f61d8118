package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/argsinto"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Fail when some marked functions are not rewritten yet",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		engine, err := argsinto.New(".", cfgFile, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		return runCheck(ctx, cmd.OutOrStdout(), logger, engine, args)
	},
}

func runCheck(ctx context.Context, out io.Writer, logger *zap.Logger, engine argsinto.Engine, paths []string) error {
	results, err := argsinto.ProcessFiles(ctx, logger, engine, paths, argsinto.CheckFile)
	stale := 0
	for _, res := range results {
		if res.Changed {
			stale++
			fmt.Fprintf(out, "%s: %d function(s) to rewrite\n", res.Filename, len(res.Funcs))
		}
	}
	if err := report(out, logger, err); err != nil {
		return err
	}
	if stale > 0 {
		return errFailed
	}
	return nil
}
