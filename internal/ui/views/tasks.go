package views

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/projman/internal/models"
	"github.com/tgienger/projman/internal/session"
	"github.com/tgienger/projman/internal/ui/keys"
	"github.com/tgienger/projman/internal/ui/styles"
)

var errDescriptionRequired = errors.New("description is required")

// inputMode is what the single text input is currently collecting
type inputMode int

const (
	inputNone inputMode = iota
	inputNewTask
	inputDescription
	inputAssignee
	inputSearch
	inputTakenBy
)

// BackToProjects asks the app to return to the project list
type BackToProjects struct{}

// TaskFilter is the set of active task filters. Zero value shows every task.
type TaskFilter struct {
	NotDone  bool
	Priority *models.Priority
	TakenBy  string
	Search   string
}

// Matcher combines the active filters
func (f TaskFilter) Matcher() models.TaskMatcher {
	var ms []models.TaskMatcher
	if f.NotDone {
		ms = append(ms, models.NotDoneMatcher{})
	}
	if f.Priority != nil {
		ms = append(ms, models.PrioMatcher{Priority: *f.Priority})
	}
	if f.TakenBy != "" {
		ms = append(ms, models.TakenByMatcher{Name: f.TakenBy})
	}
	if f.Search != "" {
		ms = append(ms, models.DescriptionMatcher{Substring: f.Search})
	}
	return models.AllOf(ms...)
}

// Active reports whether any filter is set
func (f TaskFilter) Active() bool {
	return f.NotDone || f.Priority != nil || f.TakenBy != "" || f.Search != ""
}

func (f TaskFilter) String() string {
	if !f.Active() {
		return "all"
	}
	var parts []string
	if f.NotDone {
		parts = append(parts, "not done")
	}
	if f.Priority != nil {
		parts = append(parts, "prio "+f.Priority.String())
	}
	if f.TakenBy != "" {
		parts = append(parts, "taken by "+f.TakenBy)
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("%q", f.Search))
	}
	return strings.Join(parts, ", ")
}

// nextPriority cycles the priority filter: off, high, medium, low, off
func nextPriority(p *models.Priority) *models.Priority {
	if p == nil {
		first := models.Priorities[0]
		return &first
	}
	i := slices.Index(models.Priorities, *p)
	if i < 0 || i == len(models.Priorities)-1 {
		return nil
	}
	next := models.Priorities[i+1]
	return &next
}

// TaskListView manages the tasks of one project
type TaskListView struct {
	session *session.Session
	project *models.Project
	tasks   []*models.Task
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	cursor  int
	scrollY int
	filter  TaskFilter

	mode    inputMode
	input   textinput.Model
	newPrio models.Priority

	confirmingDelete bool
	deleteTarget     *models.Task

	status    string
	statusErr bool

	showHelpPopup bool
}

// NewTaskListView builds the view for project
func NewTaskListView(s *session.Session, project *models.Project) *TaskListView {
	input := textinput.New()
	input.CharLimit = 200

	v := &TaskListView{
		session: s,
		project: project,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		input:   input,
		newPrio: models.PriorityMedium,
	}
	v.Refresh()
	return v
}

func (v *TaskListView) Init() tea.Cmd {
	return nil
}

// Project returns the project being managed
func (v *TaskListView) Project() *models.Project { return v.project }

// Tasks returns the tasks currently shown, sorted
func (v *TaskListView) Tasks() []*models.Task { return slices.Clone(v.tasks) }

// Filter returns the active filters
func (v *TaskListView) Filter() TaskFilter { return v.filter }

// Status returns the status line text and whether it reports an error
func (v *TaskListView) Status() (string, bool) { return v.status, v.statusErr }

// Refresh re-applies the filters to the project's tasks
func (v *TaskListView) Refresh() {
	v.tasks = v.project.FindTasks(v.filter.Matcher())
	slices.SortStableFunc(v.tasks, (*models.Task).Compare)
	if v.cursor >= len(v.tasks) {
		v.cursor = max(0, len(v.tasks)-1)
	}
	v.ensureVisible()
}

func (v *TaskListView) selected() (*models.Task, bool) {
	if len(v.tasks) == 0 {
		return nil, false
	}
	return v.tasks[v.cursor], true
}

func (v *TaskListView) setStatus(msg string) {
	v.status, v.statusErr = msg, false
}

func (v *TaskListView) setError(err error) {
	v.status, v.statusErr = err.Error(), true
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.input.Width = clamp(styles.ContentWidth(v.width)-10, 20, 50)
		v.ensureVisible()
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.mode != inputNone {
			return v.updateInput(msg)
		}
		return v.updateNormal(msg)
	}

	if v.mode != inputNone {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.setStatus("")

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.newPrio = models.PriorityMedium
		return v, v.startInput(inputNewTask, "Task description", "")

	case key.Matches(msg, v.keys.Find):
		return v, v.startInput(inputSearch, "Description contains...", v.filter.Search)

	case key.Matches(msg, v.keys.TakenBy):
		return v, v.startInput(inputTakenBy, "Assignee name", v.filter.TakenBy)

	case key.Matches(msg, v.keys.NotDone):
		v.filter.NotDone = !v.filter.NotDone
		v.Refresh()
		return v, nil

	case key.Matches(msg, v.keys.PrioFilter):
		v.filter.Priority = nextPriority(v.filter.Priority)
		v.Refresh()
		return v, nil

	case key.Matches(msg, v.keys.ClearFilter):
		v.filter = TaskFilter{}
		v.Refresh()
		return v, nil
	}

	t, ok := v.selected()
	if !ok {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Edit):
		return v, v.startInput(inputDescription, "Task description", t.Description())

	case key.Matches(msg, v.keys.Assign):
		if who, assigned := t.Assignee(); assigned {
			v.setError(fmt.Errorf("%w: %s", models.ErrAlreadyAssigned, who))
			return v, nil
		}
		return v, v.startInput(inputAssignee, "Who takes this task?", "")

	case key.Matches(msg, v.keys.Priority):
		v.session.SetTaskPriority(v.project, t, t.Priority().Next())
		v.setStatus(fmt.Sprintf("#%d priority %s", t.ID(), t.Priority()))
		v.Refresh()
		v.follow(t)

	case key.Matches(msg, v.keys.State):
		v.session.SetTaskState(v.project, t, t.State().Next())
		v.setStatus(fmt.Sprintf("#%d is %s, project is %s", t.ID(), t.State(), v.project.State()))
		v.Refresh()
		v.follow(t)

	case key.Matches(msg, v.keys.Delete):
		v.confirmingDelete = true
		v.deleteTarget = t
	}
	return v, nil
}

// follow moves the cursor onto t if it is still shown
func (v *TaskListView) follow(t *models.Task) {
	if i := slices.Index(v.tasks, t); i >= 0 {
		v.cursor = i
		v.ensureVisible()
	}
}

func (v *TaskListView) startInput(mode inputMode, placeholder, value string) tea.Cmd {
	v.mode = mode
	v.input.Placeholder = placeholder
	v.input.SetValue(value)
	v.input.CursorEnd()
	v.input.Focus()
	return textinput.Blink
}

func (v *TaskListView) stopInput() {
	v.mode = inputNone
	v.input.Blur()
	v.input.Reset()
}

func (v *TaskListView) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.stopInput()
		v.setStatus("")
		return v, nil

	case key.Matches(msg, v.keys.Tab) && v.mode == inputNewTask:
		v.newPrio = v.newPrio.Next()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		v.submitInput(strings.TrimSpace(v.input.Value()))
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submitInput applies the text collected in the current mode. Domain
// rejections keep the input open and show in the status line.
func (v *TaskListView) submitInput(value string) {
	switch v.mode {
	case inputNewTask:
		if value == "" {
			v.setError(errDescriptionRequired)
			return
		}
		t := v.session.AddTask(v.project, value, v.newPrio)
		v.stopInput()
		v.setStatus(fmt.Sprintf("Created #%d", t.ID()))
		v.Refresh()
		v.follow(t)

	case inputDescription:
		if value == "" {
			v.setError(errDescriptionRequired)
			return
		}
		if t, ok := v.selected(); ok {
			v.session.SetTaskDescription(v.project, t, value)
			v.stopInput()
			v.Refresh()
			v.follow(t)
			return
		}
		v.stopInput()

	case inputAssignee:
		t, ok := v.selected()
		if !ok {
			v.stopInput()
			return
		}
		if err := v.session.AssignTask(v.project, t, value); err != nil {
			v.setError(err)
			return
		}
		v.stopInput()
		v.setStatus(fmt.Sprintf("#%d taken by %s", t.ID(), value))
		v.Refresh()

	case inputSearch:
		v.filter.Search = value
		v.stopInput()
		v.cursor = 0
		v.Refresh()

	case inputTakenBy:
		v.filter.TakenBy = value
		v.stopInput()
		v.cursor = 0
		v.Refresh()
	}
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if v.session.RemoveTask(v.project, v.deleteTarget) {
			v.setStatus(fmt.Sprintf("Removed #%d", v.deleteTarget.ID()))
		}
		v.deleteTarget = nil
		v.Refresh()
	case "n", "N", "esc":
		v.confirmingDelete = false
		v.deleteTarget = nil
	}
	return v, nil
}

// visibleItems is how many two-line task rows fit on screen
func (v *TaskListView) visibleItems() int {
	return max((v.height-12)/3, 1)
}

func (v *TaskListView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	if v.mode != inputNone {
		b.WriteString("\n")
		b.WriteString(v.renderInput())
	}
	b.WriteString("\n")
	b.WriteString(renderStatus(v.styles, v.status, v.statusErr))
	b.WriteString(v.renderHelp())
	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	state := v.project.State()
	title := lipgloss.JoinHorizontal(lipgloss.Center,
		s.Title.Render(v.project.Title()),
		"  ",
		styles.ProjectState(state).Render(state.String()),
	)

	info := fmt.Sprintf("%d of %d tasks • filter: %s", len(v.tasks), v.project.TaskCount(), v.filter)
	lines := []string{title}
	if desc := v.project.Description(); desc != "" {
		lines = append(lines, s.TitleMuted.Render(desc))
	}
	lines = append(lines, s.TitleMuted.Render(info))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles
	if len(v.tasks) == 0 {
		if v.filter.Active() {
			return s.TitleMuted.Render("No tasks match. Press 'x' to clear filters.")
		}
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	end := min(v.scrollY+v.visibleItems(), len(v.tasks))
	var items []string
	for i := v.scrollY; i < end; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(t *models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	prio := styles.Priority(t.Priority()).Render(fmt.Sprintf("[%s]", t.Priority()))
	desc := styles.TaskState(t.State()).Render(firstLine(t.Description()))
	line := fmt.Sprintf("#%d %s %s", t.ID(), prio, desc)

	who := "unassigned"
	if name, ok := t.Assignee(); ok {
		who = "@" + name
	}
	info := s.TitleMuted.Render(fmt.Sprintf("%s • %s • %s", t.State(), who, t.LastUpdated().Format(timeLayout)))

	rowStyle := s.ListItem.Width(width)
	if selected {
		rowStyle = s.ListSelected.Width(width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rowStyle.Render(line), rowStyle.Render(info)) + "\n"
}

func (v *TaskListView) renderInput() string {
	s := v.styles
	var label string
	switch v.mode {
	case inputNewTask:
		label = fmt.Sprintf("New task (priority %s, tab to change):", styles.Priority(v.newPrio).Render(v.newPrio.String()))
	case inputDescription:
		label = "Description:"
	case inputAssignee:
		label = "Assign to:"
	case inputSearch:
		label = "Search descriptions (empty clears):"
	case inputTakenBy:
		label = "Taken by (empty clears):"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		label,
		s.InputFocused.Width(clamp(styles.ContentWidth(v.width)-6, 20, 50)).Render(v.input.View()),
		s.TitleMuted.Render("↵: confirm • Esc: cancel"),
	)
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	if w := styles.ContentWidth(v.width); w > 0 && w < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(
		fmt.Sprintf("%s new • %s edit • %s prio • %s state • %s assign • %s del • %s filters • %s back",
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("p"),
			s.HelpKey.Render("s"),
			s.HelpKey.Render("a"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("?"),
			s.HelpKey.Render("esc"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	lines := []string{
		s.Title.Render("Keyboard Shortcuts"),
		"",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("e") + "      edit description",
		s.HelpKey.Render("p") + "      cycle priority",
		s.HelpKey.Render("s") + "      cycle state",
		s.HelpKey.Render("a") + "      assign (once)",
		s.HelpKey.Render("d") + "      remove task",
		"",
		s.HelpKey.Render("c") + "      hide done tasks",
		s.HelpKey.Render("f") + "      cycle priority filter",
		s.HelpKey.Render("t") + "      filter by assignee",
		s.HelpKey.Render("/") + "      search descriptions",
		s.HelpKey.Render("x") + "      clear filters",
		"",
		s.HelpKey.Render("esc") + "    back to projects",
		s.HelpKey.Render("q") + "      save and quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}
	centered := lipgloss.Place(styles.ContentWidth(v.width), v.height,
		lipgloss.Center, lipgloss.Center,
		s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Remove Task?"),
		"",
		s.TitleMuted.Render(v.deleteTarget.String()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	centered := lipgloss.Place(styles.ContentWidth(v.width), v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
