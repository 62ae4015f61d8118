package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
)

// MinGoVersion is the first Go release with type parameters.
const MinGoVersion = "1.18"

var ErrGoVersion = errors.New("type parameters require go " + MinGoVersion + " or later")

// CheckGoVersion fails when the module containing dir declares a Go version
// older than MinGoVersion. Directories outside any module are accepted.
func CheckGoVersion(dir string) error {
	path, ok := findGoMod(dir)
	if !ok {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading go.mod: %w", err)
	}
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return fmt.Errorf("error parsing go.mod: %w", err)
	}

	// a module without go directive is treated as go 1.16
	version := "1.16"
	if f.Go != nil {
		version = f.Go.Version
	}
	if semver.Compare("v"+release(version), "v"+MinGoVersion) < 0 {
		return fmt.Errorf("%s declares go %s: %w", path, version, ErrGoVersion)
	}
	return nil
}

// release strips the pre-release suffix of a Go version: 1.21rc1 is 1.21.
func release(version string) string {
	if i := strings.IndexFunc(version, func(r rune) bool {
		return r != '.' && (r < '0' || r > '9')
	}); i >= 0 {
		return version[:i]
	}
	return version
}

func findGoMod(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, "go.mod")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// checkGoVersion runs CheckGoVersion once per directory.
func (e *Engine) checkGoVersion(filename string) error {
	dir := filepath.Dir(filename)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err, ok := e.versions[dir]; ok {
		return err
	}
	err := CheckGoVersion(dir)
	e.versions[dir] = err
	return err
}
