package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"todo/internal/storage"
)

type tasksMode int

const (
	modeView tasksMode = iota
	modeAdding
	modeConfirmDelete
)

type addField int

const (
	fieldTitle addField = iota
	fieldDescription
)

const (
	titleCharLimit       = 256
	descriptionCharLimit = 1024
	defaultDescWrap      = 60
)

// addDraft holds the unsaved Add form. It is only meaningful in modeAdding.
type addDraft struct {
	field       addField
	title       textinput.Model
	description textinput.Model
}

func newAddDraft() (addDraft, tea.Cmd) {
	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Task title"
	title.CharLimit = titleCharLimit

	desc := textinput.New()
	desc.Prompt = ""
	desc.Placeholder = "Optional description"
	desc.CharLimit = descriptionCharLimit

	d := addDraft{title: title, description: desc}
	return d, d.focus(fieldTitle)
}

func (d *addDraft) focus(f addField) tea.Cmd {
	d.field = f
	if f == fieldDescription {
		d.title.Blur()
		return d.description.Focus()
	}
	d.description.Blur()
	return d.title.Focus()
}

// update feeds msg to whichever input has focus.
func (d *addDraft) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if d.field == fieldDescription {
		d.description, cmd = d.description.Update(msg)
	} else {
		d.title, cmd = d.title.Update(msg)
	}
	return cmd
}

type TasksScreen struct {
	env      *Env
	tasks    []storage.Task
	selected int
	mode     tasksMode
	draft    addDraft
	status   string
	help     help.Model

	// Rendered markdown per task ID, rebuilt on reload and resize.
	renderer  *glamour.TermRenderer
	descWrap  int
	descCache map[int64]string
}

func NewTasksScreen(env *Env) *TasksScreen {
	s := &TasksScreen{
		env:      env,
		selected: -1,
		help:     help.New(),
	}
	s.SetSize(0)
	if err := env.Store.EnsureSchema(env.context()); err != nil {
		log.Error().Err(err).Msg("ensure schema")
		s.status = fmt.Sprintf("schema failed: %v", err)
		return s
	}
	if err := s.reload(); err != nil {
		return s
	}
	if len(s.tasks) > 0 {
		s.selected = 0
	}
	return s
}

// reload replaces the in-memory list with what the store holds and keeps
// the selection in bounds. On failure the previous list is kept.
func (s *TasksScreen) reload() error {
	tasks, err := storage.GetAll[storage.Task](s.env.context(), s.env.Store)
	if err != nil {
		log.Error().Err(err).Msg("load tasks")
		s.status = fmt.Sprintf("reload failed: %v", err)
		return err
	}
	s.tasks = tasks
	s.selected = clampSelection(s.selected, len(s.tasks))
	s.renderDescriptions()
	return nil
}

// SetSize rebuilds the description renderer when the details pane width
// changes. A width of zero means the terminal size is not known yet.
func (s *TasksScreen) SetSize(width int) {
	wrap := descriptionWrap(width)
	if s.renderer != nil && wrap == s.descWrap {
		return
	}
	s.descWrap = wrap
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(wrap))
	if err != nil {
		log.Warn().Err(err).Msg("markdown renderer")
		s.renderer = nil
	} else {
		s.renderer = r
	}
	s.renderDescriptions()
}

func descriptionWrap(width int) int {
	if width <= 0 {
		return defaultDescWrap
	}
	right := width - width*42/100
	if right <= 8 {
		return defaultDescWrap
	}
	return right - 8
}

func (s *TasksScreen) renderDescriptions() {
	s.descCache = make(map[int64]string, len(s.tasks))
	if s.renderer == nil {
		return
	}
	for _, t := range s.tasks {
		if !t.Description.Valid || t.Description.String == "" {
			continue
		}
		md, err := s.renderer.Render(t.Description.String)
		if err != nil {
			log.Debug().Err(err).Int64("id", t.ID).Msg("render description")
			continue
		}
		s.descCache[t.ID] = strings.Trim(md, "\n")
	}
}

// updateInput forwards non-key messages, such as cursor blinks, to the
// Add form.
func (s *TasksScreen) updateInput(msg tea.Msg) tea.Cmd {
	if s.mode != modeAdding {
		return nil
	}
	return s.draft.update(msg)
}

func (s *TasksScreen) selectedTask() (storage.Task, bool) {
	if s.selected < 0 || s.selected >= len(s.tasks) {
		return storage.Task{}, false
	}
	return s.tasks[s.selected], true
}

func (s *TasksScreen) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	switch s.mode {
	case modeAdding:
		return Action{}, s.handleAdding(msg)
	case modeConfirmDelete:
		s.handleConfirmDelete(msg)
		return Action{}, nil
	default:
		return s.handleView(msg)
	}
}

func (s *TasksScreen) handleView(msg tea.KeyMsg) (Action, tea.Cmd) {
	keys := s.env.Keys
	switch {
	case key.Matches(msg, keys.Up):
		s.selected = prevIndex(s.selected, len(s.tasks))
	case key.Matches(msg, keys.Down):
		s.selected = nextIndex(s.selected, len(s.tasks))
	case key.Matches(msg, keys.Add):
		var cmd tea.Cmd
		s.mode = modeAdding
		s.draft, cmd = newAddDraft()
		s.status = ""
		return Action{}, cmd
	case key.Matches(msg, keys.Delete):
		if t, ok := s.selectedTask(); ok {
			s.mode = modeConfirmDelete
			s.status = fmt.Sprintf("Delete %q?", t.Title)
		}
	case key.Matches(msg, keys.Toggle):
		s.toggleSelected()
	case key.Matches(msg, keys.Back):
		return switchTo(NewMenuScreen(s.env)), nil
	}
	return Action{}, nil
}

// handleAdding intercepts the form keys; everything else edits the focused
// input.
func (s *TasksScreen) handleAdding(msg tea.KeyMsg) tea.Cmd {
	keys := s.env.Keys
	switch {
	case key.Matches(msg, keys.Cancel):
		s.mode = modeView
		s.draft = addDraft{}
		s.status = "Cancelled"
	case key.Matches(msg, keys.SwitchField):
		if s.draft.field == fieldTitle {
			return s.draft.focus(fieldDescription)
		}
		return s.draft.focus(fieldTitle)
	case key.Matches(msg, keys.Confirm):
		s.commitDraft()
		s.draft = addDraft{}
		s.mode = modeView
	default:
		return s.draft.update(msg)
	}
	return nil
}

// commitDraft persists the draft when its title is not blank. Blank titles
// never reach the store.
func (s *TasksScreen) commitDraft() {
	title := strings.TrimSpace(s.draft.title.Value())
	if title == "" {
		s.status = "Title cannot be empty"
		return
	}
	task := storage.NewTask(title, strings.TrimSpace(s.draft.description.Value()))
	if err := s.env.Store.Save(s.env.context(), &task); err != nil {
		log.Error().Err(err).Msg("save task")
		s.status = fmt.Sprintf("save failed: %v", err)
		return
	}
	if err := s.reload(); err != nil {
		return
	}
	// Newest first: the task just saved is at the top.
	s.selected = clampSelection(0, len(s.tasks))
	s.status = "Added task"
}

func (s *TasksScreen) handleConfirmDelete(msg tea.KeyMsg) {
	keys := s.env.Keys
	switch {
	case key.Matches(msg, keys.Confirm):
		s.mode = modeView
		t, ok := s.selectedTask()
		if !ok {
			return
		}
		if err := storage.Delete[storage.Task](s.env.context(), s.env.Store, t.ID); err != nil {
			log.Error().Err(err).Int64("id", t.ID).Msg("delete task")
			s.status = fmt.Sprintf("delete failed: %v", err)
			return
		}
		if err := s.reload(); err == nil {
			s.status = "Deleted task"
		}
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.No):
		s.mode = modeView
		s.status = "Delete cancelled"
	}
}

func (s *TasksScreen) toggleSelected() {
	t, ok := s.selectedTask()
	if !ok {
		return
	}
	t.Completed = !t.Completed
	if err := s.env.Store.Update(s.env.context(), &t); err != nil {
		log.Error().Err(err).Int64("id", t.ID).Msg("toggle task")
		s.status = fmt.Sprintf("toggle failed: %v", err)
		return
	}
	if err := s.reload(); err == nil {
		s.status = "Toggled task"
	}
}

func (s *TasksScreen) View(width, height int) string {
	leftW, rightW := 0, 0
	if width > 0 {
		leftW = width * 42 / 100
		rightW = width - leftW
	}

	left := framed(panelStyle, fmt.Sprintf("Tasks (%d)", len(s.tasks)), s.renderList(), leftW)
	var right string
	if s.mode == modeAdding {
		right = framed(formPanelStyle, "Add Task", s.renderForm(), rightW)
	} else {
		right = framed(panelStyle, "Details", s.renderDetails(), rightW)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, body, s.renderStatusBar(width))
}

func (s *TasksScreen) renderList() string {
	if len(s.tasks) == 0 {
		return dimStyle.Render("(no tasks, press 'a' to add one)")
	}
	rows := make([]string, 0, len(s.tasks))
	for i, t := range s.tasks {
		icon, style := "○", lipgloss.NewStyle()
		if t.Completed {
			icon, style = "✓", doneStyle
		}
		line := fmt.Sprintf("%s %s", icon, t.Title)
		if i == s.selected && s.mode != modeAdding {
			rows = append(rows, highlightStyle.Render(highlightSymbol+line))
			continue
		}
		rows = append(rows, "   "+style.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (s *TasksScreen) renderDetails() string {
	t, ok := s.selectedTask()
	if !ok {
		return dimStyle.Render("Select a task to see details.")
	}
	status := pendingStyle.Render("○  Pending")
	if t.Completed {
		status = okStyle.Render("✓  Completed")
	}
	return strings.Join([]string{
		dimStyle.Render("ID:     ") + fmt.Sprint(t.ID),
		dimStyle.Render("Title:  ") + titleStyle.Render(t.Title),
		dimStyle.Render("Status: ") + status,
		"",
		dimStyle.Render("Description:"),
		s.description(t),
	}, "\n")
}

// description returns the pre-rendered markdown for t, or the raw text
// when rendering failed.
func (s *TasksScreen) description(t storage.Task) string {
	if !t.Description.Valid || t.Description.String == "" {
		return "No description."
	}
	if out, ok := s.descCache[t.ID]; ok {
		return out
	}
	return t.Description.String
}

func (s *TasksScreen) renderForm() string {
	titleLabel, descLabel := dimStyle.Render("Title"), dimStyle.Render("Description (optional)")
	if s.draft.field == fieldTitle {
		titleLabel = activeField.Render("Title")
	} else {
		descLabel = activeField.Render("Description (optional)")
	}
	return strings.Join([]string{
		titleLabel,
		headerStyle.Render("> ") + s.draft.title.View(),
		"",
		descLabel,
		headerStyle.Render("> ") + s.draft.description.View(),
	}, "\n")
}

func (s *TasksScreen) renderStatusBar(width int) string {
	keys := s.env.Keys
	var hints string
	style := okStyle
	switch s.mode {
	case modeAdding:
		style = warnStyle
		hints = s.help.ShortHelpView([]key.Binding{
			keys.SwitchField, withHelp(keys.Confirm, "save"), keys.Cancel,
		})
	case modeConfirmDelete:
		style = errorStyle
		hints = s.help.ShortHelpView([]key.Binding{
			withHelp(keys.Confirm, "confirm delete"), withHelp(keys.Cancel, "keep"),
		})
	default:
		hints = s.help.ShortHelpView([]key.Binding{
			keys.Up, keys.Down, keys.Add, keys.Delete, keys.Toggle, keys.Back,
		})
	}
	line := hints
	if s.status != "" {
		line = style.Render(s.status) + "  " + hints
	}
	bar := statusBarStyle
	if width > 0 {
		bar = bar.Width(max(width-bar.GetHorizontalBorderSize(), 10))
	}
	return bar.Render(line)
}
