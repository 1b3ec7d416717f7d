package views

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/projman/internal/models"
	"github.com/tgienger/projman/internal/session"
	"github.com/tgienger/projman/internal/ui/keys"
	"github.com/tgienger/projman/internal/ui/styles"
)

// timeLayout is how timestamps show up in lists
const timeLayout = "2006-01-02 15:04"

var errTitleRequired = errors.New("title is required")

type projectItem struct {
	project *models.Project
}

func (i projectItem) Title() string { return i.project.Title() }

func (i projectItem) Description() string {
	p := i.project
	return fmt.Sprintf("%s • %d tasks • updated %s", p.State(), p.TaskCount(), p.LastUpdated().Format(timeLayout))
}

func (i projectItem) FilterValue() string { return i.project.Title() }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)
	titleStyle := d.styles.ListItem.Width(width)
	infoStyle := d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	if index == m.Index() {
		titleStyle = d.styles.ListSelected.Width(width)
		infoStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	state := styles.ProjectState(p.project.State()).Render(p.project.State().String())
	title := fmt.Sprintf("#%d %s  %s", p.project.ID(), p.Title(), state)
	info := p.Description()
	if desc := p.project.Description(); desc != "" {
		info = firstLine(desc) + " • " + info
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(title), infoStyle.Render(info))
}

// SelectedProject asks the app to open a project
type SelectedProject struct {
	Project *models.Project
}

// ProjectListView lists the projects of the session
type ProjectListView struct {
	session  *session.Session
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	// find by exact title; empty shows everything
	finding   bool
	findInput textinput.Model
	findTitle string

	creating bool
	newTitle textinput.Model
	newDesc  textinput.Model
	focusIdx int // 0=title, 1=description, 2=create

	confirmingDelete bool
	deleteTarget     *models.Project

	status    string
	statusErr bool

	showHelpPopup bool
}

// NewProjectListView builds the view over s
func NewProjectListView(s *session.Session) *ProjectListView {
	st := styles.NewStyles()

	findInput := textinput.New()
	findInput.Placeholder = "Exact project title"
	findInput.CharLimit = 100

	newTitle := textinput.New()
	newTitle.Placeholder = "Project title"
	newTitle.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 200

	delegate := &projectDelegate{styles: st, width: styles.MaxWidth}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = st.Title

	v := &ProjectListView{
		session:   s,
		list:      l,
		delegate:  delegate,
		styles:    st,
		keys:      keys.DefaultKeyMap(),
		findInput: findInput,
		newTitle:  newTitle,
		newDesc:   newDesc,
	}
	v.Refresh()
	return v
}

func (v *ProjectListView) Init() tea.Cmd {
	return nil
}

// Refresh reloads the list from the session, keeping the cursor in range
func (v *ProjectListView) Refresh() {
	var projects []*models.Project
	if v.findTitle != "" {
		projects = v.session.FindProjects(v.findTitle)
	} else {
		projects = v.session.SortedProjects()
	}

	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p}
	}
	idx := v.list.Index()
	v.list.SetItems(items)
	if idx >= len(items) {
		idx = max(0, len(items)-1)
	}
	v.list.Select(idx)
}

// Selected returns the project under the cursor
func (v *ProjectListView) Selected() (*models.Project, bool) {
	item, ok := v.list.SelectedItem().(projectItem)
	if !ok {
		return nil, false
	}
	return item.project, true
}

// Status returns the status line text and whether it reports an error
func (v *ProjectListView) Status() (string, bool) { return v.status, v.statusErr }

func (v *ProjectListView) setStatus(msg string) {
	v.status, v.statusErr = msg, false
}

func (v *ProjectListView) setError(err error) {
	v.status, v.statusErr = err.Error(), true
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, max(msg.Height-8, 3))
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.finding {
			return v.updateFinding(msg)
		}
		return v.updateNormal(msg)
	}

	if v.creating || v.finding {
		return v, v.updateInputs(msg)
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// updateInputs hands cursor blinks to whichever input has focus
func (v *ProjectListView) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case v.finding:
		v.findInput, cmd = v.findInput.Update(msg)
	case v.focusIdx == 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case v.focusIdx == 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return cmd
}

func (v *ProjectListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.setStatus("")

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.findTitle != "" {
			v.findTitle = ""
			v.Refresh()
		}
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.focusIdx = 0
		v.newTitle.Reset()
		v.newDesc.Reset()
		v.updateFocus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Find):
		v.finding = true
		v.findInput.SetValue(v.findTitle)
		v.findInput.CursorEnd()
		v.findInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Enter):
		if p, ok := v.Selected(); ok {
			return v, func() tea.Msg { return SelectedProject{Project: p} }
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if p, ok := v.Selected(); ok {
			v.confirmingDelete = true
			v.deleteTarget = p
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateFinding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.finding = false
		v.findInput.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		v.finding = false
		v.findInput.Blur()
		v.findTitle = strings.TrimSpace(v.findInput.Value())
		v.list.Select(0)
		v.Refresh()
		if v.findTitle != "" && len(v.list.Items()) == 0 {
			v.setStatus(fmt.Sprintf("No project titled %q", v.findTitle))
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.findInput, cmd = v.findInput.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if p, ok := v.session.RemoveProject(v.deleteTarget.ID()); ok {
			v.setStatus("Removed " + p.Title())
		}
		v.deleteTarget = nil
		v.Refresh()
	case "n", "N", "esc":
		v.confirmingDelete = false
		v.deleteTarget = nil
	}
	return v, nil
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		v.setStatus("")
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.create()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.create()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

// create adds the project from the form. Rejections keep the form open.
func (v *ProjectListView) create() tea.Cmd {
	title := strings.TrimSpace(v.newTitle.Value())
	if title == "" {
		v.setError(errTitleRequired)
		return nil
	}
	p, err := v.session.AddProject(title, strings.TrimSpace(v.newDesc.Value()))
	if err != nil {
		v.setError(err)
		return nil
	}
	v.creating = false
	v.setStatus("Created " + p.Title())
	v.Refresh()
	return func() tea.Msg { return SelectedProject{Project: p} }
}

func (v *ProjectListView) updateFocus() {
	v.newTitle.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newTitle.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.creating {
		return v.renderCreateForm()
	}

	var b strings.Builder
	if len(v.list.Items()) == 0 && v.findTitle == "" {
		b.WriteString(v.renderEmpty())
	} else {
		if v.findTitle != "" {
			v.list.Title = fmt.Sprintf("Projects titled %q", v.findTitle)
		} else {
			v.list.Title = "Projects"
		}
		b.WriteString(v.list.View())
	}
	if v.finding {
		b.WriteString("\n")
		b.WriteString(v.styles.InputFocused.Width(clamp(styles.ContentWidth(v.width)-6, 20, 50)).Render(v.findInput.View()))
	}
	b.WriteString("\n")
	b.WriteString(renderStatus(v.styles, v.status, v.statusErr))
	b.WriteString(v.renderHelp())
	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No projects created"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)
	return lipgloss.Place(styles.ContentWidth(v.width), max(v.height-6, 7),
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle, descStyle, btnStyle := s.Input, s.Input, s.Button
	switch v.focusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}
	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Project"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.newTitle.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		btnStyle.Render(" Create "),
		renderStatus(s, v.status, v.statusErr),
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	s := v.styles
	if w := styles.ContentWidth(v.width); w > 0 && w < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(
		fmt.Sprintf("%s open • %s new • %s find • %s del • %s quit",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("/"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	lines := []string{
		s.Title.Render("Keyboard Shortcuts"),
		"",
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("/") + "      find by title",
		s.HelpKey.Render("esc") + "    clear find",
		s.HelpKey.Render("d") + "      remove project",
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

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Remove Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q and its %d tasks will be removed.", v.deleteTarget.Title(), v.deleteTarget.TaskCount())),
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

// renderStatus draws the one-line status; an empty message keeps the line
func renderStatus(s *styles.Styles, msg string, isErr bool) string {
	if msg == "" {
		return ""
	}
	if isErr {
		return s.StatusError.Render("✗ " + msg)
	}
	return s.StatusOK.Render(msg)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "…"
	}
	return s
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	return min(max(val, minVal), maxVal)
}
