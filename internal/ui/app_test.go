package ui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tgienger/projman/internal/db"
	"github.com/tgienger/projman/internal/models"
	"github.com/tgienger/projman/internal/session"
	"github.com/tgienger/projman/internal/ui/views"
)

func newApp(t *testing.T) (*App, *session.Session, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	s, err := session.Open(db.NewYAMLStore(filepath.Join(t.TempDir(), "projects.yaml")), log)
	require.NoError(t, err)
	a := NewApp(s, log)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return a, s, logs
}

// deliver runs cmd and feeds its message back, the way the program loop does
func deliver(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	a.Update(cmd())
}

func TestApp_OpenAndLeaveProject(t *testing.T) {
	a, s, logs := newApp(t)
	p, err := s.AddProject("garden", "")
	require.NoError(t, err)
	s.AddTask(p, "weed", models.PriorityHigh)
	a.ProjectList().Refresh()

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	deliver(t, a, cmd)

	assert.Equal(t, ViewTasks, a.CurrentView())
	require.NotNil(t, a.TaskList())
	assert.Same(t, p, a.TaskList().Project())
	assert.Contains(t, a.View(), "weed")
	assert.Equal(t, 1, logs.FilterMessage("project opened").Len())

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Nil(t, cmd)
	assert.Equal(t, models.StateInProgress, p.Tasks()[0].State())

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	deliver(t, a, cmd)
	assert.Equal(t, ViewProjects, a.CurrentView())
	assert.Nil(t, a.TaskList())
	assert.Contains(t, a.View(), "ongoing")
}

func TestApp_NewProjectOpensIt(t *testing.T) {
	a, s, _ := newApp(t)

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("attic")})
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	deliver(t, a, cmd)

	require.Len(t, s.Projects(), 1)
	assert.Equal(t, ViewTasks, a.CurrentView())
	assert.Equal(t, "attic", a.TaskList().Project().Title())
	assert.True(t, s.Dirty())
}

func TestApp_SelectedProjectMessage(t *testing.T) {
	a, s, _ := newApp(t)
	p, err := s.AddProject("a", "")
	require.NoError(t, err)

	_, cmd := a.Update(views.SelectedProject{Project: p})
	require.NotNil(t, cmd)
	assert.Equal(t, ViewTasks, a.CurrentView())

	a.Update(views.BackToProjects{})
	assert.Equal(t, ViewProjects, a.CurrentView())
	selected, ok := a.ProjectList().Selected()
	require.True(t, ok)
	assert.Same(t, p, selected)
}

func TestApp_Quit(t *testing.T) {
	a, _, _ := newApp(t)
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestNewApp_NilLogger(t *testing.T) {
	s, err := session.Open(db.NewYAMLStore(filepath.Join(t.TempDir(), "projects.yaml")), nil)
	require.NoError(t, err)
	a := NewApp(s, nil)
	assert.NotNil(t, a.log)
	assert.Nil(t, a.Init())
}
