package ui

import (
	"context"

	"todo/internal/storage"
	"todo/internal/update"
)

// Screen is one of MenuScreen, TasksScreen or SettingsScreen. The set is
// closed: the controller dispatches on the concrete type.
type Screen interface {
	screen()
}

func (*MenuScreen) screen()     {}
func (*TasksScreen) screen()    {}
func (*SettingsScreen) screen() {}

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSwitch
	ActionExit
	ActionUpdateAndExit
)

// Action is what a screen asks the controller to do after a key press.
// The zero value asks for nothing.
type Action struct {
	Kind ActionKind
	Next Screen
}

func switchTo(s Screen) Action { return Action{Kind: ActionSwitch, Next: s} }

var (
	exitAction          = Action{Kind: ActionExit}
	updateAndExitAction = Action{Kind: ActionUpdateAndExit}
)

// UpdateChecker reports a newer release, or nil when up to date.
type UpdateChecker interface {
	Check(ctx context.Context) (*update.Result, error)
}

// Env carries what screens need to build each other.
type Env struct {
	Ctx     context.Context
	Store   *storage.Store
	Checker UpdateChecker
	Keys    KeyMap
	Version string
}

func (e *Env) context() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}
