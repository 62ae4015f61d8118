package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/argsinto"
	"github.com/gnolang/argsinto/formatter"
	"github.com/gnolang/argsinto/internal"
)

var (
	dryRun bool
	diff   bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Rewrite the marked functions in place",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		engine, err := argsinto.New(".", cfgFile, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}

		mode := fixWrite
		switch {
		case diff:
			mode = fixDiff
		case dryRun:
			mode = fixPrint
		}
		return runFix(ctx, cmd.OutOrStdout(), logger, engine, args, mode)
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the rewritten files without writing them")
	fixCmd.Flags().BoolVarP(&diff, "diff", "d", false, "print a diff of the changes without writing them")
}

type fixMode int

const (
	fixWrite fixMode = iota
	fixPrint
	fixDiff
)

func runFix(ctx context.Context, out io.Writer, logger *zap.Logger, engine argsinto.Engine, paths []string, mode fixMode) error {
	processor := argsinto.CheckFile
	if mode == fixWrite {
		processor = argsinto.ProcessFile
	}
	results, err := argsinto.ProcessFiles(ctx, logger, engine, paths, processor)
	for _, res := range results {
		if !res.Changed {
			continue
		}
		switch mode {
		case fixDiff:
			if err := printDiff(out, res); err != nil {
				return err
			}
		case fixPrint:
			fmt.Fprintf(out, "// %s\n%s", res.Filename, res.Output)
		default:
			fmt.Fprintf(out, "%s: rewrote %d function(s)\n", res.Filename, len(res.Funcs))
		}
	}
	return report(out, logger, err)
}

func printDiff(out io.Writer, res *argsinto.Result) error {
	src, err := os.ReadFile(res.Filename)
	if err != nil {
		return err
	}
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(src)),
		B:        difflib.SplitLines(string(res.Output)),
		FromFile: res.Filename,
		ToFile:   res.Filename,
		Context:  3,
		Eol:      "\n",
	}
	return difflib.WriteUnifiedDiff(out, d)
}

// report prints the issues err carries with their source lines and logs
// the other failures. It returns errFailed when err is not nil.
func report(out io.Writer, logger *zap.Logger, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	issues := argsinto.Issues(err)
	byFile := make(map[string][]argsinto.Issue)
	var files []string
	for _, issue := range issues {
		if _, ok := byFile[issue.Filename]; !ok {
			files = append(files, issue.Filename)
		}
		byFile[issue.Filename] = append(byFile[issue.Filename], issue)
	}
	for _, filename := range files {
		src, rerr := internal.ReadSourceCode(filename)
		if rerr != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(rerr))
			continue
		}
		fmt.Fprint(out, formatter.GenerateFormattedIssue(byFile[filename], src))
	}
	if len(issues) == 0 {
		logger.Error("Error processing files", zap.Error(err))
	}
	return errFailed
}
