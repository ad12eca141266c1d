package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"todo/internal/update"
)

const (
	settingsCheck = "Check for Updates"
	settingsBack  = "Back"
)

const checkPollInterval = 100 * time.Millisecond

type updateState int

const (
	stateIdle updateState = iota
	stateChecking
	stateUpdateAvailable
)

type checkOutcome struct {
	result *update.Result
	err    error
}

// checkPollMsg asks the controller to look for a finished update check.
type checkPollMsg struct{}

func scheduleCheckPoll() tea.Cmd {
	return tea.Tick(checkPollInterval, func(time.Time) tea.Msg {
		return checkPollMsg{}
	})
}

type SettingsScreen struct {
	env     *Env
	list    NavList
	state   updateState
	status  string
	failed  bool
	result  *update.Result
	pending <-chan checkOutcome
	spinner spinner.Model
	help    help.Model
}

func NewSettingsScreen(env *Env) *SettingsScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = warnStyle
	return &SettingsScreen{
		env:     env,
		list:    NewNavList(settingsCheck, settingsBack),
		spinner: sp,
		help:    help.New(),
	}
}

func (s *SettingsScreen) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	keys := s.env.Keys
	if s.state == stateUpdateAvailable {
		switch {
		case key.Matches(msg, keys.Yes):
			return updateAndExitAction, nil
		case key.Matches(msg, keys.No):
			s.state = stateIdle
			s.result = nil
			s.status = "Update cancelled."
		}
		return Action{}, nil
	}

	switch {
	case key.Matches(msg, keys.Down):
		s.list.Next()
	case key.Matches(msg, keys.Up):
		s.list.Previous()
	case key.Matches(msg, keys.Confirm):
		switch s.list.Current() {
		case settingsCheck:
			return Action{}, s.startCheck()
		case settingsBack:
			return switchTo(NewMenuScreen(s.env)), nil
		}
	case key.Matches(msg, keys.Back):
		return switchTo(NewMenuScreen(s.env)), nil
	}
	return Action{}, nil
}

// startCheck runs the update check in the background. Only one check is
// in flight per screen.
func (s *SettingsScreen) startCheck() tea.Cmd {
	if s.state == stateChecking {
		return nil
	}
	if s.env.Checker == nil {
		s.status = "Update checks are not configured."
		return nil
	}
	s.state = stateChecking
	s.failed = false
	s.status = "Checking for updates..."

	ch := make(chan checkOutcome, 1)
	s.pending = ch
	checker, ctx := s.env.Checker, s.env.context()
	go func() {
		res, err := checker.Check(ctx)
		ch <- checkOutcome{result: res, err: err}
	}()
	return tea.Batch(s.spinner.Tick, scheduleCheckPoll())
}

// Pending reports whether a check result has yet to be collected.
func (s *SettingsScreen) Pending() bool { return s.pending != nil }

// poll collects a finished check without blocking. It returns false while
// the check is still running.
func (s *SettingsScreen) poll() bool {
	if s.pending == nil {
		return true
	}
	var out checkOutcome
	select {
	case out = <-s.pending:
	default:
		return false
	}
	s.pending = nil

	switch {
	case out.err != nil:
		log.Warn().Err(out.err).Msg("update check failed")
		s.state = stateIdle
		s.failed = true
		s.status = fmt.Sprintf("Update check failed: %v", out.err)
	case out.result != nil:
		log.Info().Str("latest", out.result.Latest).Msg("update available")
		s.state = stateUpdateAvailable
		s.result = out.result
		s.status = ""
	default:
		s.state = stateIdle
		s.status = fmt.Sprintf("✓ Version %s is up to date.", s.env.Version)
	}
	return true
}

// Result is the update the user accepted, if any.
func (s *SettingsScreen) Result() *update.Result { return s.result }

func (s *SettingsScreen) updateSpinner(msg spinner.TickMsg) tea.Cmd {
	if s.state != stateChecking {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

func (s *SettingsScreen) View(width, height int) string {
	body := renderOptions(s.list) + "\n\n" + dimStyle.Render("Current version: "+s.env.Version)
	panel := framed(panelStyle, "Settings", body, width)

	keys := s.env.Keys
	var line string
	switch s.state {
	case stateChecking:
		line = s.spinner.View() + " " + warnStyle.Render("Checking for updates...")
	case stateUpdateAvailable:
		line = warnStyle.Render("Waiting for input...")
	default:
		line = s.help.ShortHelpView([]key.Binding{keys.Up, keys.Down, keys.Confirm, keys.Back})
		if s.status != "" {
			style := okStyle
			if s.failed {
				style = errorStyle
			}
			line = style.Render(s.status) + "  " + line
		}
	}
	bar := statusBarStyle
	if width > 0 {
		bar = bar.Width(max(width-bar.GetHorizontalBorderSize(), 10))
	}
	view := lipgloss.JoinVertical(lipgloss.Left, panel, bar.Render(line))

	if s.state == stateUpdateAvailable && s.result != nil {
		view = s.overlayPrompt(view, width, height)
	}
	return view
}

func (s *SettingsScreen) overlayPrompt(view string, width, height int) string {
	prompt := lipgloss.JoinVertical(lipgloss.Center,
		headerStyle.Render("Update Available"),
		"",
		"A new version ("+titleStyle.Render(s.result.Latest)+") is available!",
		"",
		dimStyle.Render("Would you like to install it now?"),
		"",
		okStyle.Bold(true).Render("[y] Yes")+"   "+errorStyle.Bold(true).Render("[n] No"),
	)
	popup := popupStyle.Render(prompt)
	if width <= 0 || height <= 0 {
		return lipgloss.JoinVertical(lipgloss.Left, view, popup)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, popup)
}
