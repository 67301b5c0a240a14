package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomkit/sceneedit/internal/config"
	"github.com/roomkit/sceneedit/internal/dispatcher"
	"github.com/roomkit/sceneedit/internal/handlers"
	"github.com/roomkit/sceneedit/internal/layout"
	"github.com/roomkit/sceneedit/pkg/core"
)

// testEnv writes a config that keeps logs and the journal inside a temp dir.
func testEnv(t *testing.T, extra string) string {
	t.Helper()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logsDir": ` + quote(filepath.Join(dir, "logs")) + `,
		"journal": { "path": ` + quote(filepath.Join(dir, "journal.db")) + ` }` + extra + `
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))
	return dir
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

func runScript(t *testing.T, dir, script string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--config-dir", dir}, args...)
	err = run(context.Background(), args, strings.NewReader(script), &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantCmd string
		args    []string
		ok      bool
		quit    bool
	}{
		{"blank", "   ", "", nil, false, false},
		{"comment", "# setup", "", nil, false, false},
		{"add", `add "Dining Table" 0,0.375,0`, handlers.CmdObjectAdd, []string{"Dining Table", "0,0.375,0"}, true, false},
		{"alias", "rm abc", handlers.CmdObjectRemove, []string{"abc"}, true, false},
		{"case insensitive", "UNDO", handlers.CmdUndo, []string{}, true, false},
		{"unknown", "paint it", cmdInvalid, nil, true, false},
		{"bad quoting", `add "Sofa`, cmdInvalid, nil, true, false},
		{"quit", "quit", "", nil, false, true},
		{"exit", "exit", "", nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok, err := parseLine(tt.line)
			if tt.quit {
				assert.ErrorIs(t, err, errQuit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantCmd, e.Command)
			if tt.args != nil {
				assert.Equal(t, tt.args, e.Args)
			}
		})
	}
}

func TestRender(t *testing.T) {
	obj := core.PlacedObject{ID: "a", Name: "Chair", Category: "seating", Position: core.Vec3{1, 0.45, 2}, Color: "#c19a6b"}

	tests := []struct {
		name string
		cmd  string
		v    any
		want []string
	}{
		{"added", handlers.CmdObjectAdd, obj, []string{"added a (Chair) at 1,0.45,2"}},
		{"updated", handlers.CmdObjectUpdate, obj, []string{"updated a (Chair)"}},
		{"removed", handlers.CmdObjectRemove, "a", []string{"removed a"}},
		{"selection cleared", handlers.CmdSelect, "", []string{"selected: none"}},
		{"undo applied", handlers.CmdUndo, true, []string{"undo: ok"}},
		{"redo empty", handlers.CmdRedo, false, []string{"redo: nothing to redo"}},
		{"area", handlers.CmdSceneArea, 2.5, []string{"occupied floor area: 2.50"}},
		{"no collisions", handlers.CmdSceneCollision, []layout.Collision(nil), []string{"no collisions"}},
		{"collisions", handlers.CmdSceneCollision, []layout.Collision{{A: "a", B: "b", Area: 0.3}}, []string{"OVERLAP", "0.300"}},
		{"empty scene", handlers.CmdSceneList, core.Snapshot{}, []string{"scene is empty"}},
		{"scene", handlers.CmdSceneList, core.Snapshot{Objects: []core.PlacedObject{obj}, SelectedID: "a"}, []string{"*", "Chair", "seating", "0.0°"}},
		{"history", cmdHistory, historyInfo{Mode: "command", Limit: 0, Undo: 2}, []string{"mode=command limit=unbounded undo=2 redo=0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			render(&buf, tt.cmd, tt.v)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--version"}, strings.NewReader(""), &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "sceneedit "+Version)
}

func TestRun_Session(t *testing.T) {
	dir := testEnv(t, "")

	script := `
# two pieces of furniture
add Chair 1,0.45,1
add Desk -2,0.375,0 90deg
pick 1 1
update . name="Reading Chair" color=red
list
history
undo
redo
pick 1 1
remove .
list
undo
collisions
quit
add Sofa
`
	stdout, stderr, err := runScript(t, dir, script)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "added ")
	assert.Contains(t, stdout, "(Chair) at 1,0.45,1")
	assert.Contains(t, stdout, "(Reading Chair)")
	assert.Contains(t, stdout, "#e62937")
	assert.Contains(t, stdout, "history: mode=command limit=100 undo=3 redo=0")
	assert.Contains(t, stdout, "undo: ok")
	assert.Contains(t, stdout, "redo: ok")
	assert.Contains(t, stdout, "removed ")
	assert.Contains(t, stdout, "no collisions")
	assert.NotContains(t, stdout, "Sofa", "commands after quit are ignored")
	assert.Empty(t, stderr)

	logs, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRun_ScriptFailuresAreReported(t *testing.T) {
	dir := testEnv(t, "")

	scriptPath := filepath.Join(dir, "edit.txt")
	require.NoError(t, os.WriteFile(scriptPath, []byte("add Hammock\nundo\nselect ghost\n"), 0o644))

	stdout, stderr, err := runScript(t, dir, "", "--script", scriptPath)
	require.ErrorIs(t, err, errCommandsFailed)

	assert.Contains(t, stderr, "unknown preset")
	assert.Contains(t, stderr, "not found")
	assert.Contains(t, stdout, "undo: nothing to undo")
}

func TestRun_InteractiveErrorsDoNotFail(t *testing.T) {
	dir := testEnv(t, "")

	_, stderr, err := runScript(t, dir, "frobnicate\nundo\n")
	require.NoError(t, err)
	assert.Contains(t, stderr, "unknown command frobnicate")
}

func TestRun_LaggedHistoryFlag(t *testing.T) {
	dir := testEnv(t, "")

	stdout, stderr, err := runScript(t, dir, "add Plant\nundo\nlist\nhistory\n", "--history-mode", "lagged", "--history-capacity", "5")
	require.NoError(t, err, stderr)

	// the first undo restores the state after the add
	assert.NotContains(t, stdout, "scene is empty")
	assert.Contains(t, stdout, "Plant")
	assert.Contains(t, stdout, "history: mode=lagged limit=5")
}

func TestRun_UnknownHistoryMode(t *testing.T) {
	dir := testEnv(t, "")

	_, _, err := runScript(t, dir, "", "--history-mode", "timeline")
	assert.Error(t, err)
}

func TestRun_Journal(t *testing.T) {
	dir := testEnv(t, `, "catalog": { "file": "" }`)

	stdout, stderr, err := runScript(t, dir, "add Stool\nadd Rug\nundo\njournal 2\n", "--journal")
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "SEQ")
	assert.Contains(t, stdout, "undone")
	assert.Contains(t, stdout, "added")
	_, err = os.Stat(filepath.Join(dir, "journal.db"))
	assert.NoError(t, err)
}

func TestRun_JournalBadLimit(t *testing.T) {
	dir := testEnv(t, "")

	_, stderr, err := runScript(t, dir, "add Stool\njournal 1e300\njournal -1\njournal 1.5\n", "--journal")
	require.NoError(t, err)
	assert.Contains(t, stderr, `bad limit "1e300"`)
	assert.Contains(t, stderr, `bad limit "-1"`)
	assert.Contains(t, stderr, `bad limit "1.5"`)
}

func TestRun_JournalDisabled(t *testing.T) {
	dir := testEnv(t, "")

	_, stderr, err := runScript(t, dir, "journal\n")
	require.NoError(t, err)
	assert.Contains(t, stderr, "journal is disabled")
}

func TestRun_CustomCatalog(t *testing.T) {
	dir := t.TempDir()
	presets := filepath.Join(dir, "presets.json")
	require.NoError(t, os.WriteFile(presets, []byte(`[{"name":"Piano","category":"decor","size":[1.5,1.0,0.6],"color":"black"}]`), 0o644))

	env := testEnv(t, "")
	stdout, stderr, err := runScript(t, env, "presets\nadd piano\n", "--catalog", presets)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "Piano")
	assert.Contains(t, stdout, "#000000")
	assert.NotContains(t, stdout, "Sofa")
}

func TestShell_ReadStopsOnCancel(t *testing.T) {
	sh := &shell{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make(chan dispatcher.Event)
	sh.read(ctx, strings.NewReader("undo\nundo\n"), events)

	_, open := <-events
	assert.False(t, open, "events must be closed")
}

func TestRun_InfluxBackup(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "edits.gz")
	dir := testEnv(t, `, "influx": { "url": "http://127.0.0.1:1", "backupPath": `+quote(backup)+` }`)

	_, stderr, err := runScript(t, dir, "add Plant\nundo\n", "--influx")
	require.NoError(t, err, stderr)

	info, err := os.Stat(backup)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
