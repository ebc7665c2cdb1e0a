package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	out, _, err := execute(t, "run", "--log-level", "error")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "This is C, "))
	// 两次调用落到同一个 TestServiceC 实例
	assert.Equal(t, lines[0], lines[1])
}

func TestBeans(t *testing.T) {
	out, _, err := execute(t, "beans", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "testServiceB")
	assert.Contains(t, out, "prototype")
	assert.Contains(t, out, "cycle (breakable): TestServiceA -> TestServiceC -> TestServiceA")
}

func TestBeansJSONWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ioc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ioc:
  scan: [github.com/gocrud/ioc/example/service]
  discovery: source
  log:
    level: warn
`), 0o644))

	out, _, err := execute(t, "beans", "--json", "--config", path)
	require.NoError(t, err)

	var result struct {
		Beans []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"beans"`
		Cycles []struct {
			Path []string `json:"path"`
		} `json:"cycles"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Beans, 3)
	assert.Equal(t, "READY", result.Beans[0].State)
	require.Len(t, result.Cycles, 1)
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, _, err = execute(t, "run", "--log-level", "loud")
	assert.Error(t, err)
}

func TestRunEveryRejectsBadInterval(t *testing.T) {
	_, _, err := execute(t, "run", "--every", "soon", "--log-level", "error")
	assert.Error(t, err)
}
