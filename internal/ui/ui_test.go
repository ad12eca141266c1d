package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/update"
)

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestModelStartsOnMenu(t *testing.T) {
	m := New(newTestEnv(t))
	assert.IsType(t, &MenuScreen{}, m.active)
	assert.Contains(t, m.View(), "Main Menu")
}

func TestModelSwitchesScreens(t *testing.T) {
	m := New(newTestEnv(t))

	m, _ = send(t, m, keyOf(tea.KeyEnter))
	require.IsType(t, &TasksScreen{}, m.active)
	assert.Contains(t, m.View(), "Tasks (0)")

	m, _ = send(t, m, keyOf(tea.KeyEsc))
	require.IsType(t, &MenuScreen{}, m.active)

	m, _ = send(t, m, keyOf(tea.KeyDown))
	m, _ = send(t, m, keyOf(tea.KeyEnter))
	assert.IsType(t, &SettingsScreen{}, m.active)
}

func TestModelSwitchDiscardsDraft(t *testing.T) {
	env := newTestEnv(t)
	m := New(env)
	m, _ = send(t, m, keyOf(tea.KeyEnter))
	m, _ = send(t, m, runes("a"))
	m, _ = send(t, m, runes("x"))
	m, _ = send(t, m, keyOf(tea.KeyEsc))
	m, _ = send(t, m, keyOf(tea.KeyEsc))
	require.IsType(t, &MenuScreen{}, m.active)

	m, _ = send(t, m, keyOf(tea.KeyEnter))
	tasks := m.active.(*TasksScreen)
	assert.Equal(t, modeView, tasks.mode)
	assert.Empty(t, storedTasks(t, env))
}

func TestModelExit(t *testing.T) {
	m := New(newTestEnv(t))
	_, cmd := send(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelCtrlCQuitsFromAnyScreen(t *testing.T) {
	m := New(newTestEnv(t))
	m, _ = send(t, m, keyOf(tea.KeyEnter))
	m, _ = send(t, m, runes("a"))
	_, cmd := send(t, m, keyOf(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelUpdateAndExitRecordsResult(t *testing.T) {
	env := newTestEnv(t)
	res := &update.Result{Current: "v1.0.0", Latest: "v1.2.0", DownloadURL: "https://example.com/todo"}
	env.Checker = &fakeChecker{result: res}
	m := New(env)

	m, _ = send(t, m, keyOf(tea.KeyDown))
	m, _ = send(t, m, keyOf(tea.KeyEnter))
	settings := m.active.(*SettingsScreen)
	m, cmd := send(t, m, keyOf(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, stateChecking, settings.state)

	require.Eventually(t, func() bool {
		m, _ = send(t, m, checkPollMsg{})
		return !settings.Pending()
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, stateUpdateAvailable, settings.state)

	m, cmd = send(t, m, runes("y"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Same(t, res, m.accepted)
}

func TestModelTracksWindowSize(t *testing.T) {
	m := New(newTestEnv(t))
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, 80, m.width)
	assert.Equal(t, 24, m.height)
}

func TestModelSizesTasksScreen(t *testing.T) {
	m := New(newTestEnv(t))
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = send(t, m, keyOf(tea.KeyEnter))
	tasks := m.active.(*TasksScreen)
	assert.Equal(t, descriptionWrap(120), tasks.descWrap, "sized on switch")

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	assert.Equal(t, descriptionWrap(200), tasks.descWrap, "resized with the terminal")
}

func TestModelForwardsPasteToAddForm(t *testing.T) {
	env := newTestEnv(t)
	m := New(env)
	m, _ = send(t, m, keyOf(tea.KeyEnter))
	m, cmd := send(t, m, runes("a"))
	require.NotNil(t, cmd, "focusing the title starts the cursor")

	tasks := m.active.(*TasksScreen)
	_, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("one\ntwo"), Paste: true})
	assert.Equal(t, "one two", tasks.draft.title.Value())
}
