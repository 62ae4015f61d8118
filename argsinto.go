// Package argsinto rewrites Go functions marked with a //argsinto directive
// so that each of their parameters accepts any argument convertible into
// its declared type.
package argsinto

import (
	"go.uber.org/zap"

	"github.com/gnolang/argsinto/internal"
	tt "github.com/gnolang/argsinto/internal/types"
)

type (
	// Result is the rewritten content of one file.
	Result = internal.Result
	// Issue is a positioned failure to rewrite a file.
	Issue = tt.Issue
)

// Engine rewrites files.
type Engine interface {
	Run(filename string) (*Result, error)
	RunSource(filename string, src []byte) (*Result, error)
	Write(res *Result) error
}

// New creates an engine configured from configPath, or from the
// configuration file of rootDir when configPath is empty.
func New(rootDir, configPath string, logger *zap.Logger) (*internal.Engine, error) {
	config, err := findConfig(rootDir, configPath)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("loaded configuration", zap.String("name", config.Name), zap.String("directive", config.Directive), zap.Strings("nolint", config.Nolint))
	}
	return internal.NewEngine(config.options(), logger), nil
}
