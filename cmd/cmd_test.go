package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/codewarden/warden/errors"
)

const testRules = `version: "1.0"
paths:
  patterns:
    - vendor/
patterns:
  placeholders:
    severity: error
    enabled: true
    rules:
      - id: todo_comments
        type: text
        pattern: '\bTODO\b'
        message: "unresolved TODO"
`

func setupProject(t *testing.T, sources map[string]string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "warden.yaml"), []byte(testRules), 0o644))
	for rel, content := range sources {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prev)) })
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	RootCmd.SetArgs(args)
	return RootCmd.ExecuteContext(context.Background())
}

func stubExit(t *testing.T) *int {
	t.Helper()
	code := -1
	original := errUtils.OsExit
	errUtils.OsExit = func(c int) { code = c }
	t.Cleanup(func() { errUtils.OsExit = original })
	return &code
}

func TestCheckCleanTree(t *testing.T) {
	setupProject(t, map[string]string{
		"main.go": "package main\n\nfunc main() {}\n",
	})
	code := stubExit(t)

	err := execute(t, "check", "--no-cache", "--format", "agent")
	require.NoError(t, err)
	assert.Equal(t, -1, *code, "clean tree must not trigger an explicit exit")
}

func TestCheckExitsOneOnBlockingViolation(t *testing.T) {
	setupProject(t, map[string]string{
		"main.go": "package main\n\n// TODO: finish\nfunc main() {}\n",
	})
	code := stubExit(t)

	err := execute(t, "check", "--no-cache", "--format", "agent")
	require.NoError(t, err)
	assert.Equal(t, errUtils.ExitViolations, *code)
}

func TestCheckRejectsUnknownFormat(t *testing.T) {
	setupProject(t, nil)

	err := execute(t, "check", "--no-cache", "--format", "csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrUnknownFormat)
}

func TestRulesCommand(t *testing.T) {
	setupProject(t, nil)
	assert.NoError(t, execute(t, "rules"))
}

func TestExplainKnownRule(t *testing.T) {
	setupProject(t, nil)
	assert.NoError(t, execute(t, "explain", "todo_comments"))
}

func TestExplainUnknownRule(t *testing.T) {
	setupProject(t, nil)
	err := execute(t, "explain", "no_such_rule")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrUnknownRule)
}

func TestValidateConfig(t *testing.T) {
	setupProject(t, nil)
	assert.NoError(t, execute(t, "validate-config"))
}

func TestValidateConfigRejectsBadFile(t *testing.T) {
	setupProject(t, nil)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: \"9.9\"\n"), 0o644))

	err := execute(t, "validate-config", bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrInvalidConfig)
}

func TestUsageErrorsExitWithTwo(t *testing.T) {
	setupProject(t, nil)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: \"9.9\"\n"), 0o644))

	RootCmd.SetArgs([]string{"validate-config", bad})
	err := Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, errUtils.ExitUsage, errUtils.GetExitCode(err))
}

func TestCheckDegradesOnCorruptCache(t *testing.T) {
	setupProject(t, map[string]string{
		"main.go": "package main\n\n// TODO: finish\nfunc main() {}\n",
	})
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(cachePath, []byte("{not json"), 0o644))
	code := stubExit(t)

	// A corrupt cache downgrades to a full uncached run; the violation is
	// still found and the cache is rewritten from scratch.
	err := execute(t, "check", "--no-cache=false", "--format", "agent", "--cache-path", cachePath)
	require.NoError(t, err)
	assert.Equal(t, errUtils.ExitViolations, *code)
}

func TestVersionCommand(t *testing.T) {
	assert.NoError(t, execute(t, "version"))
}

func TestCacheSubcommands(t *testing.T) {
	setupProject(t, map[string]string{
		"main.go": "package main\n\nfunc main() {}\n",
	})
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	code := stubExit(t)

	// Flag values persist across executions in one process, so the cache
	// toggle is reset explicitly.
	require.NoError(t, execute(t, "check", "--no-cache=false", "--format", "agent", "--cache-path", cachePath))
	require.Equal(t, -1, *code)

	assert.NoError(t, execute(t, "cache", "stats", "--cache-path", cachePath))
	assert.NoError(t, execute(t, "cache", "cleanup", "--cache-path", cachePath))
	assert.NoError(t, execute(t, "cache", "clear", "--cache-path", cachePath))
	_, err := os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err))
}
