package argsinto

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/argsinto/scanner"
)

// Processor handles one file with engine.
type Processor func(engine Engine, filename string) (*Result, error)

// ProcessFile rewrites filename and writes it back when it changed.
func ProcessFile(engine Engine, filename string) (*Result, error) {
	res, err := engine.Run(filename)
	if err != nil {
		return nil, err
	}
	if err := engine.Write(res); err != nil {
		return nil, err
	}
	return res, nil
}

// CheckFile rewrites filename without touching it.
func CheckFile(engine Engine, filename string) (*Result, error) {
	return engine.Run(filename)
}

// ProcessSource rewrites src, read from filename.
func ProcessSource(engine Engine, filename string, src []byte) (*Result, error) {
	return engine.RunSource(filename, src)
}

// ProcessFiles runs processor over every path. The results of the files
// that could be processed are returned along with the joined errors of the
// others.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	processor Processor,
) ([]*Result, error) {
	var (
		all  []*Result
		errs []error
	)
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, processor)
		all = append(all, results...)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			errs = append(errs, err)
		}
	}
	return all, errors.Join(errs...)
}

// ProcessPath runs processor over path, or over the Go files below it when
// it is a directory. Files are processed concurrently and their results
// returned in path order.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	processor Processor,
) ([]*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !isGoFile(path) {
			return nil, nil
		}
		res, err := processor(engine, path)
		if err != nil {
			logger.Error("Error processing file", zap.String("file", path), zap.Error(err))
			return nil, err
		}
		return []*Result{res}, nil
	}

	files, err := scanner.New(path, ".go").Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	results := make([]*Result, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := processor(engine, file.Path)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", file.Path), zap.Error(err))
				errs[i] = err
			} else {
				results[i] = res
			}
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_ = bar.Finish()

	var out []*Result
	for _, res := range results {
		if res != nil {
			out = append(out, res)
		}
	}
	return out, errors.Join(errs...)
}

// Issues returns the issues err carries, looking through joined errors.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var issues []Issue
		for _, e := range joined.Unwrap() {
			issues = append(issues, Issues(e)...)
		}
		return issues
	}
	var issue Issue
	if errors.As(err, &issue) {
		return []Issue{issue}
	}
	return nil
}

func isGoFile(path string) bool {
	return filepath.Ext(path) == ".go"
}
