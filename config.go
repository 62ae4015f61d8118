package argsinto

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/argsinto/internal"
	"github.com/gnolang/argsinto/internal/goast"
)

// DefaultConfigFile is looked up in the root directory when no
// configuration path is given.
const DefaultConfigFile = ".argsinto.yaml"

// Config is the content of the configuration file.
type Config struct {
	Name string `yaml:"name"`
	// Directive marks the functions to rewrite.
	Directive string `yaml:"directive"`
	// Nolint lists the linters suppressed on rewritten functions. An empty
	// list suppresses all of them.
	Nolint []string `yaml:"nolint"`
	// CheckGoVersion rejects modules whose go directive predates generics.
	CheckGoVersion bool `yaml:"check_go_version"`
}

// DefaultConfig returns the configuration used when there is no file.
func DefaultConfig() Config {
	return Config{
		Name:           "argsinto",
		Directive:      goast.DefaultDirective,
		Nolint:         append([]string(nil), internal.DefaultNolint...),
		CheckGoVersion: true,
	}
}

func (c Config) options() internal.Options {
	return internal.Options{
		Directive:      c.Directive,
		Nolint:         c.Nolint,
		CheckGoVersion: c.CheckGoVersion,
	}
}

// LoadConfig reads the configuration file at path. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return config, nil
}

// WriteConfig creates or replaces the configuration file at path.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

// findConfig returns the configuration of rootDir: the file at configPath
// when given, DefaultConfigFile in rootDir when it exists, the defaults
// otherwise.
func findConfig(rootDir, configPath string) (Config, error) {
	if configPath != "" {
		return LoadConfig(configPath)
	}
	config, err := LoadConfig(filepath.Join(rootDir, DefaultConfigFile))
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return config, err
}
