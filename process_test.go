package argsinto

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetSource = `package greet

//argsinto
func Greet(name string) string {
	return "hello " + name
}
`

const greetOutput = `package greet

//nolint:revive,stylecheck
func Greet[__NAME interface{ ~string }](name __NAME) string {
	{
		name := string(name)
		return "hello " + name
	}
}
`

const variadicSource = `package greet

//argsinto
func Join(parts ...string) string {
	return ""
}
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestProcessPathDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.go":          greetSource,
		"b.go":          "package greet\n",
		"notes.txt":     greetSource,
		"sub/c.go":      greetSource,
		"testdata/d.go": greetSource,
	})

	engine, err := New(dir, "", nil)
	require.NoError(t, err)

	results, err := ProcessPath(context.Background(), nil, engine, dir, ProcessFile)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var names []string
	for _, res := range results {
		names = append(names, filepath.Base(res.Filename))
	}
	assert.Equal(t, []string{"a.go", "b.go", "c.go"}, names)
	assert.True(t, results[0].Changed)
	assert.False(t, results[1].Changed)

	assert.Equal(t, greetOutput, readFile(t, filepath.Join(dir, "a.go")))
	assert.Equal(t, greetOutput, readFile(t, filepath.Join(dir, "sub", "c.go")))
	assert.Equal(t, greetSource, readFile(t, filepath.Join(dir, "testdata", "d.go")))
	assert.Equal(t, greetSource, readFile(t, filepath.Join(dir, "notes.txt")))
}

func TestProcessPathCheckOnly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	writeFiles(t, dir, map[string]string{"a.go": greetSource})

	engine, err := New(dir, "", nil)
	require.NoError(t, err)

	results, err := ProcessPath(context.Background(), nil, engine, path, CheckFile)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, greetOutput, string(results[0].Output))
	assert.Equal(t, greetSource, readFile(t, path))
}

func TestProcessPathErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.go":    greetSource,
		"join.go": variadicSource,
	})

	engine, err := New(dir, "", nil)
	require.NoError(t, err)

	results, err := ProcessPath(context.Background(), nil, engine, dir, CheckFile)
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.go", filepath.Base(results[0].Filename))

	issues := Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, "variadic-parameter", issues[0].Rule)
	assert.Equal(t, 4, issues[0].Start.Line)
	assert.Equal(t, variadicSource, readFile(t, filepath.Join(dir, "join.go")))
}

func TestProcessPathMissing(t *testing.T) {
	t.Parallel()
	engine, err := New(t.TempDir(), "", nil)
	require.NoError(t, err)

	_, err = ProcessPath(context.Background(), nil, engine, filepath.Join(t.TempDir(), "missing"), CheckFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessPathNotGo(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": greetSource})
	engine, err := New(dir, "", nil)
	require.NoError(t, err)

	results, err := ProcessPath(context.Background(), nil, engine, filepath.Join(dir, "a.txt"), ProcessFile)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	files := make(map[string]string)
	for i := 0; i < 10; i++ {
		files[fmt.Sprintf("test%d.go", i)] = greetSource
	}
	writeFiles(t, dir, files)

	engine, err := New(dir, "", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ProcessPath(ctx, nil, engine, dir, ProcessFile)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"one/a.go":    greetSource,
		"two/join.go": variadicSource,
	})

	engine, err := New(dir, "", nil)
	require.NoError(t, err)

	paths := []string{filepath.Join(dir, "one"), filepath.Join(dir, "two"), filepath.Join(dir, "three")}
	results, err := ProcessFiles(context.Background(), nil, engine, paths, CheckFile)
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Len(t, Issues(err), 1)
}

func TestProcessSource(t *testing.T) {
	t.Parallel()
	engine, err := New(t.TempDir(), "", nil)
	require.NoError(t, err)

	res, err := ProcessSource(engine, "greet.go", []byte(greetSource))
	require.NoError(t, err)
	assert.Equal(t, []string{"Greet"}, res.Funcs)
	assert.Equal(t, greetOutput, string(res.Output))
}

func TestNewWithConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		DefaultConfigFile: "directive: //convert\nnolint: [revive]\n",
	})

	engine, err := New(dir, "", nil)
	require.NoError(t, err)

	src := "package greet\n\n//convert\nfunc Greet(name string) {\n\tprintln(name)\n}\n"
	res, err := engine.RunSource("greet.go", []byte(src))
	require.NoError(t, err)
	assert.Contains(t, string(res.Output), "//nolint:revive\nfunc Greet[__NAME interface{ ~string }](name __NAME) {")

	_, err = New(dir, filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestIssues(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Issues(nil))
	assert.Nil(t, Issues(os.ErrNotExist))

	issue := Issue{Rule: "missing-body"}
	wrapped := fmt.Errorf("file: %w", issue)
	issues := Issues(fmt.Errorf("outer: %w", wrapped))
	require.Len(t, issues, 1)
	assert.Equal(t, "missing-body", issues[0].Rule)
}
