package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/projman/internal/db"
	"github.com/tgienger/projman/internal/models"
)

// harness runs commands against a data file in a temp dir
type harness struct {
	t    *testing.T
	data string
}

func newHarness(t *testing.T, file string) *harness {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return &harness{t: t, data: filepath.Join(root, file)}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--data", h.data}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	output, err := h.run(args...)
	require.NoError(h.t, err, output)
	return output
}

func (h *harness) load() []*models.Project {
	h.t.Helper()
	c, err := db.Open(h.data).Load()
	require.NoError(h.t, err)
	return c.Projects
}

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("projects: {{{"), 0644)
}

func TestCLI_AddListFind(t *testing.T) {
	h := newHarness(t, "projects.db")

	assert.Contains(t, h.mustRun("list"), "No projects created.")

	assert.Contains(t, h.mustRun("add", "garden", "vegetables"), "Project created: #0 garden")
	h.mustRun("add", "attic")

	list := h.mustRun("list")
	assert.Contains(t, list, "garden")
	assert.Contains(t, list, "vegetables")
	assert.Contains(t, list, "attic")
	assert.Contains(t, list, "empty")
	assert.Contains(t, list, "2 projects, highest id #1")

	assert.Contains(t, h.mustRun("find", "attic"), "attic")
	assert.Contains(t, h.mustRun("find", "Attic"), "No matches.")

	assert.Len(t, h.load(), 2)
}

func TestCLI_DuplicateTitle(t *testing.T) {
	h := newHarness(t, "projects.yaml")
	h.mustRun("add", "X", "first")

	_, err := h.run("add", "X", "second")
	require.ErrorIs(t, err, models.ErrDuplicateTitle)

	projects := h.load()
	require.Len(t, projects, 1)
	assert.Equal(t, "first", projects[0].Description())
}

func TestCLI_TaskLifecycle(t *testing.T) {
	h := newHarness(t, "projects.yaml")
	h.mustRun("add", "release")
	h.mustRun("task", "add", "0", "write changelog", "--prio", "high")
	h.mustRun("task", "add", "0", "tag build", "-p", "low")
	h.mustRun("task", "add", "0", "announce", "-p", "high")

	h.mustRun("task", "assign", "0", "0", "alice")
	_, err := h.run("task", "assign", "0", "0", "bob")
	require.ErrorIs(t, err, models.ErrAlreadyAssigned)

	high := h.mustRun("tasks", "0", "--prio", "high")
	assert.Contains(t, high, "write changelog")
	assert.Contains(t, high, "announce")
	assert.NotContains(t, high, "tag build")

	assert.Contains(t, h.mustRun("tasks", "0", "--taken-by", "alice"), "write changelog")
	assert.Contains(t, h.mustRun("tasks", "0", "--taken-by", "bob"), "No tasks.")

	for _, id := range []string{"0", "1", "2"} {
		h.mustRun("task", "state", "0", id, "done")
	}
	assert.Contains(t, h.mustRun("tasks", "0", "--not-done"), "No tasks.")
	assert.Contains(t, h.mustRun("tasks", "0"), "release (completed)")

	h.mustRun("task", "describe", "0", "1", "tag and sign build")
	h.mustRun("task", "prio", "0", "1", "medium")
	h.mustRun("task", "remove", "0", "2")

	projects := h.load()
	require.Len(t, projects, 1)
	tasks := projects[0].Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "tag and sign build", tasks[1].Description())
	assert.Equal(t, models.PriorityMedium, tasks[1].Priority())
	who, ok := tasks[0].Assignee()
	assert.True(t, ok)
	assert.Equal(t, "alice", who)
	assert.Equal(t, 3, projects[0].NextTaskID())
}

func TestCLI_NotFound(t *testing.T) {
	h := newHarness(t, "projects.yaml")
	h.mustRun("add", "a")

	_, err := h.run("remove", "5")
	assert.ErrorIs(t, err, errNotFound)

	_, err = h.run("tasks", "9")
	assert.ErrorIs(t, err, errNotFound)

	_, err = h.run("task", "state", "0", "3", "done")
	assert.ErrorIs(t, err, errNotFound)

	_, err = h.run("remove", "abc")
	assert.Error(t, err)
}

func TestCLI_RemoveProject(t *testing.T) {
	h := newHarness(t, "projects.db")
	h.mustRun("add", "a")
	h.mustRun("add", "b")

	assert.Contains(t, h.mustRun("remove", "0"), "Project removed: a")
	h.mustRun("remove", "1")
	h.mustRun("add", "b")
	h.mustRun("add", "c")

	projects := h.load()
	require.Len(t, projects, 2)
	assert.Equal(t, 2, projects[0].ID())
	assert.Equal(t, 3, projects[1].ID(), "ids are not recycled across runs")
}

func TestCLI_BadInput(t *testing.T) {
	h := newHarness(t, "projects.yaml")
	h.mustRun("add", "a")

	_, err := h.run("task", "add", "0", "x", "--prio", "urgent")
	assert.ErrorIs(t, err, models.ErrUnknownPriority)

	_, err = h.run("tasks", "0", "--prio", "urgent")
	assert.ErrorIs(t, err, models.ErrUnknownPriority)

	_, err = h.run("task", "state", "0", "0", "paused")
	assert.ErrorIs(t, err, models.ErrUnknownState)
}

func TestCLI_Export(t *testing.T) {
	h := newHarness(t, "projects.db")
	h.mustRun("add", "a", "desc")
	h.mustRun("task", "add", "0", "t1")

	dest := filepath.Join(t.TempDir(), "out.yaml")
	assert.Contains(t, h.mustRun("export", dest), "Exported 1 projects")

	exported, err := db.Open(dest).Load()
	require.NoError(t, err)
	require.Len(t, exported.Projects, 1)
	assert.Equal(t, "desc", exported.Projects[0].Description())
	assert.Equal(t, 1, exported.Projects[0].TaskCount())
	assert.Equal(t, 1, exported.NextProjectID)

	_, err = h.run("export", h.data)
	assert.Error(t, err)
}

func TestCLI_CorruptDataFile(t *testing.T) {
	h := newHarness(t, "projects.yaml")
	require.NoError(t, writeGarbage(h.data))

	_, err := h.run("list")
	assert.ErrorIs(t, err, db.ErrFormat)
}

func TestCLI_Version(t *testing.T) {
	h := newHarness(t, "projects.yaml")
	assert.Equal(t, "projman test\n", h.mustRun("version"))
}
