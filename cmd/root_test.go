package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

var longBio = strings.Repeat("abcdefghij", 30)

const bobJSON = `{"name": "Bob", "age": 30}`

func bioJSON() string {
	return `{"name": "Bob", "bio": "` + longBio + `"}`
}

// execute runs a fresh root command with stdin and args and returns what it
// wrote to stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootTreeFromStdin(t *testing.T) {
	out, _, err := execute(t, bobJSON)
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Bob")
	assert.Contains(t, out, "Age: 30")
	assert.NotContains(t, out, "\x1b[")
}

func TestRootStdinDash(t *testing.T) {
	out, _, err := execute(t, "name: Ann\n", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Ann")
}

func TestRootFileArgument(t *testing.T) {
	path := writeFile(t, "doc.toml", "name = \"Bob\"\n")
	out, _, err := execute(t, "", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Bob")
}

func TestRootMissingFile(t *testing.T) {
	_, _, err := execute(t, "", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestRootExpand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
		excludes string
	}{
		{"collapsed by default", nil, "Bio: [+] abcdefghij", longBio},
		{"expand flag", []string{"-e", "bio"}, longBio, "[+]"},
		{"expand all", []string{"--expand-all"}, longBio, "[+]"},
		{"show keys", []string{"--show-keys"}, "(bio)", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, bioJSON(), tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.contains)
			if tt.excludes != "" {
				assert.NotContains(t, out, tt.excludes)
			}
		})
	}
}

func TestRootOutputFormats(t *testing.T) {
	tests := []struct {
		format   string
		contains string
	}{
		{"tree", "Name: Bob"},
		{"table", "KEY"},
		{"markdown", "| Key | Value |"},
		{"html", "<table>"},
		{"yaml", "type: table"},
		{"mermaid", "graph TD"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, _, err := execute(t, bobJSON, "-o", tt.format)
			require.NoError(t, err)
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestRootJSONOutput(t *testing.T) {
	out, _, err := execute(t, bobJSON, "-o", "json")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "table", decoded["type"])
}

func TestRootInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"output", []string{"-o", "pdf"}, "invalid output format"},
		{"array style", []string{"--array-style", "roman"}, "invalid array-style"},
		{"limit and tail", []string{"--limit", "1", "--tail", "1"}, "mutually exclusive"},
		{"key format", []string{"--key-format", "pascal"}, "invalid key format"},
		{"auto decode", []string{"--auto-decode", "lazy"}, "invalid auto-decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, bobJSON, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRootMalformedInput(t *testing.T) {
	_, _, err := execute(t, `{"a": `)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jsonvalue.ErrMalformedInput), "got %v", err)
}

func TestRootExprAndLimit(t *testing.T) {
	doc := `{"items": [{"id": 1, "name": "a"}, {"id": 2, "name": "b"}, {"id": 3, "name": "c"}]}`

	out, _, err := execute(t, doc, "--expr", "_.items", "--tail", "1", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"c"`)
	assert.NotContains(t, out, `"a"`)

	_, _, err = execute(t, doc, "--expr", "_.(")
	require.Error(t, err)
}

func TestRootAutoDecode(t *testing.T) {
	doc := `{"payload": "{\"inner\": {\"deep\": {\"x\": 1}}}"}`
	out, _, err := execute(t, doc, "--auto-decode", "eager")
	require.NoError(t, err)
	assert.Contains(t, out, "Inner")
}

func TestRootRenderThresholdFlags(t *testing.T) {
	out, _, err := execute(t, `{"note": "`+strings.Repeat("n", 30)+`"}`, "--long-text-chars", "10", "--large-content-chars", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "[+] nnnnnnnnnn...")

	out, _, err = execute(t, `{"first_name": "Bob"}`, "--key-format", "simple")
	require.NoError(t, err)
	assert.Contains(t, out, "First name: Bob")
}

func TestRootPriorityKeys(t *testing.T) {
	doc := `{"b": {"x": {"y": 1}}, "a": {"x": {"y": 1}}}`
	out, _, err := execute(t, doc, "--priority-keys", "a")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "A"), strings.Index(out, "B"))
}

func TestRootConfigFile(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "output: table\nrender:\n  key_format: simple\n")

	out, _, err := execute(t, `{"first_name": "Bob"}`, "--config-file", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "First name")

	// explicit flags win over the file
	out, _, err = execute(t, `{"first_name": "Bob"}`, "--config-file", cfg, "-o", "tree", "--key-format", "title")
	require.NoError(t, err)
	assert.Contains(t, out, "First Name: Bob")
	assert.NotContains(t, out, "KEY")
}

func TestRootConfigFromXDG(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "kvtree"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kvtree", "config.toml"), []byte("output = \"markdown\"\n"), 0o600))

	cmd := newRootCmd()
	t.Setenv("XDG_CONFIG_HOME", dir)
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(bobJSON))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "| Key | Value |")
}

func TestRootBadConfigFile(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "unknown_field: 1\n")
	_, _, err := execute(t, bobJSON, "--config-file", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestRootStateFile(t *testing.T) {
	state := writeFile(t, "state.json", `{"version": 1, "expanded": ["bio"]}`)
	out, _, err := execute(t, bioJSON(), "--state", state)
	require.NoError(t, err)
	assert.Contains(t, out, longBio)

	missing := filepath.Join(t.TempDir(), "new.yaml")
	out, _, err = execute(t, bioJSON(), "--state", missing)
	require.NoError(t, err)
	assert.Contains(t, out, "[+]")
	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr), "state is only written by the viewer")
}

func TestRootDebugLogging(t *testing.T) {
	_, errOut, err := execute(t, bobJSON, "--debug")
	require.NoError(t, err)
	assert.Contains(t, errOut, `"message":"rendered"`)
	assert.Contains(t, errOut, `"source":"stdin"`)

	_, errOut, err = execute(t, bobJSON)
	require.NoError(t, err)
	assert.Empty(t, errOut)
}

func TestSetupRunKeepsLoggerSync(t *testing.T) {
	cmd := newRootCmd()
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)

	var common commonOptions
	require.NoError(t, setupRun(cmd, &common))
	require.NotNil(t, common.logSync)
	assert.NoError(t, common.logSync())
}

func TestSyncingLogs(t *testing.T) {
	errRun := errors.New("render failed")
	tests := []struct {
		name    string
		runErr  error
		syncErr error
		warning bool
	}{
		{"success", nil, nil, false},
		{"run error still syncs", errRun, nil, false},
		{"sync error is reported", nil, errors.New("disk full"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synced := 0
			common := &commonOptions{logSync: func() error {
				synced++
				return tt.syncErr
			}}
			cmd := newRootCmd()
			var errOut bytes.Buffer
			cmd.SetErr(&errOut)

			run := syncingLogs(common, func(*cobra.Command, []string) error { return tt.runErr })
			err := run(cmd, nil)
			assert.ErrorIs(t, err, tt.runErr)
			assert.Equal(t, 1, synced)
			assert.Equal(t, tt.warning, strings.Contains(errOut.String(), "failed to sync logger"))
		})
	}
}

func TestTTYDevice(t *testing.T) {
	assert.Equal(t, "CONIN$", ttyDevice("windows"))
	assert.Equal(t, "/dev/tty", ttyDevice("linux"))
}
