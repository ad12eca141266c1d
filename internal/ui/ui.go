package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"todo/internal/update"
)

// Model owns the active screen, feeds it key presses and applies the
// actions it returns.
type Model struct {
	env    *Env
	active Screen
	width  int
	height int

	// accepted is set when the user confirmed an update before quitting.
	accepted *update.Result
}

func New(env *Env) Model {
	return Model{env: env, active: NewMenuScreen(env)}
}

// Run drives the interactive session until the user exits. A non-nil
// result means the user asked to install that update.
func Run(ctx context.Context, env *Env) (*update.Result, error) {
	if env.Ctx == nil {
		env.Ctx = ctx
	}
	program := tea.NewProgram(New(env), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("run program: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.accepted, nil
	}
	return nil, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeActive()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		action, cmd := handleKey(m.active, msg)
		return m.apply(action, cmd)
	case checkPollMsg:
		if s, ok := m.active.(*SettingsScreen); ok && s.Pending() {
			if !s.poll() {
				return m, scheduleCheckPoll()
			}
		}
	case spinner.TickMsg:
		if s, ok := m.active.(*SettingsScreen); ok {
			return m, s.updateSpinner(msg)
		}
	default:
		if s, ok := m.active.(*TasksScreen); ok {
			return m, s.updateInput(msg)
		}
	}
	return m, nil
}

// resizeActive passes the terminal width to screens that lay out by it.
func (m Model) resizeActive() {
	if s, ok := m.active.(*TasksScreen); ok {
		s.SetSize(m.width)
	}
}

func handleKey(s Screen, msg tea.KeyMsg) (Action, tea.Cmd) {
	switch s := s.(type) {
	case *MenuScreen:
		return s.HandleKey(msg)
	case *TasksScreen:
		return s.HandleKey(msg)
	case *SettingsScreen:
		return s.HandleKey(msg)
	}
	return Action{}, nil
}

func (m Model) apply(action Action, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch action.Kind {
	case ActionSwitch:
		log.Debug().Str("screen", screenName(action.Next)).Msg("switch screen")
		m.active = action.Next
		m.resizeActive()
		return m, cmd
	case ActionExit:
		return m, tea.Quit
	case ActionUpdateAndExit:
		if s, ok := m.active.(*SettingsScreen); ok {
			m.accepted = s.Result()
		}
		return m, tea.Quit
	}
	return m, cmd
}

func (m Model) View() string {
	switch s := m.active.(type) {
	case *MenuScreen:
		return s.View(m.width, m.height)
	case *TasksScreen:
		return s.View(m.width, m.height)
	case *SettingsScreen:
		return s.View(m.width, m.height)
	}
	return ""
}

func screenName(s Screen) string {
	switch s.(type) {
	case *MenuScreen:
		return "menu"
	case *TasksScreen:
		return "tasks"
	case *SettingsScreen:
		return "settings"
	}
	return "unknown"
}
