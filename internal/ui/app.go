package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tgienger/projman/internal/models"
	"github.com/tgienger/projman/internal/session"
	"github.com/tgienger/projman/internal/ui/views"
)

// View is the active screen
type View int

const (
	ViewProjects View = iota
	ViewTasks
)

// App switches between the project list and the task view of one project
type App struct {
	session     *session.Session
	log         *zap.Logger
	currentView View
	projectList *views.ProjectListView
	taskList    *views.TaskListView
	width       int
	height      int
}

// NewApp builds the application over an already loaded session
func NewApp(s *session.Session, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		session:     s,
		log:         log,
		currentView: ViewProjects,
		projectList: views.NewProjectListView(s),
	}
}

// CurrentView returns the active screen
func (a *App) CurrentView() View { return a.currentView }

// ProjectList returns the project list screen
func (a *App) ProjectList() *views.ProjectListView { return a.projectList }

// TaskList returns the task screen, nil until a project was opened
func (a *App) TaskList() *views.TaskListView { return a.taskList }

func (a *App) Init() tea.Cmd {
	return a.projectList.Init()
}

func (a *App) openProject(project *models.Project) tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.session, project)
	a.log.Debug("project opened", zap.Int("project_id", project.ID()))

	return tea.Batch(a.taskList.Init(), a.resize)
}

// resize replays the terminal size to a freshly shown view
func (a *App) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// the project list keeps its state while a project is open
		a.projectList.Update(msg)

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.currentView = ViewProjects
		a.taskList = nil
		a.projectList.Refresh()
		return a, a.resize
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	if a.currentView == ViewTasks && a.taskList != nil {
		return a.taskList.View()
	}
	return a.projectList.View()
}
