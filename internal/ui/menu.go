package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	menuViewTasks = "View Tasks"
	menuSettings  = "Settings"
	menuExit      = "Exit"
)

type MenuScreen struct {
	env  *Env
	list NavList
}

func NewMenuScreen(env *Env) *MenuScreen {
	return &MenuScreen{
		env:  env,
		list: NewNavList(menuViewTasks, menuSettings, menuExit),
	}
}

func (s *MenuScreen) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	keys := s.env.Keys
	switch {
	case key.Matches(msg, keys.Down):
		s.list.Next()
	case key.Matches(msg, keys.Up):
		s.list.Previous()
	case key.Matches(msg, keys.Confirm):
		switch s.list.Current() {
		case menuViewTasks:
			return switchTo(NewTasksScreen(s.env)), nil
		case menuSettings:
			return switchTo(NewSettingsScreen(s.env)), nil
		case menuExit:
			return exitAction, nil
		}
	case key.Matches(msg, keys.Quit):
		return exitAction, nil
	}
	return Action{}, nil
}

func (s *MenuScreen) View(width, height int) string {
	return framed(panelStyle, "Main Menu", renderOptions(s.list), width)
}
