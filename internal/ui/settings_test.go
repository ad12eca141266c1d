package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/update"
)

// runCheck presses Enter on "Check for Updates" and waits for the result.
func runCheck(t *testing.T, s *SettingsScreen) {
	t.Helper()
	require.Equal(t, settingsCheck, s.list.Current())
	_, cmd := s.HandleKey(keyOf(tea.KeyEnter))
	require.NotNil(t, cmd)
	require.Eventually(t, s.poll, time.Second, 5*time.Millisecond)
}

func TestSettingsUpToDate(t *testing.T) {
	env := newTestEnv(t)
	s := NewSettingsScreen(env)

	runCheck(t, s)

	assert.Equal(t, stateIdle, s.state)
	assert.Contains(t, s.status, "v1.0.0 is up to date")
	assert.False(t, s.Pending())
	assert.Nil(t, s.Result())
}

func TestSettingsUpdateAvailableAccept(t *testing.T) {
	env := newTestEnv(t)
	res := &update.Result{Current: "v1.0.0", Latest: "v1.1.0", DownloadURL: "https://example.com/bin"}
	env.Checker = &fakeChecker{result: res}
	s := NewSettingsScreen(env)

	runCheck(t, s)
	require.Equal(t, stateUpdateAvailable, s.state)
	assert.Contains(t, s.View(0, 0), "v1.1.0")

	action, _ := s.HandleKey(keyOf(tea.KeyDown))
	assert.Equal(t, ActionNone, action.Kind, "list keys are intercepted by the prompt")
	assert.Equal(t, settingsCheck, s.list.Current())

	action, _ = s.HandleKey(runes("y"))
	assert.Equal(t, ActionUpdateAndExit, action.Kind)
	assert.Same(t, res, s.Result())
}

func TestSettingsUpdateAvailableDecline(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("n"), runes("N"), keyOf(tea.KeyEsc)} {
		env := newTestEnv(t)
		env.Checker = &fakeChecker{result: &update.Result{Latest: "v2.0.0"}}
		s := NewSettingsScreen(env)
		runCheck(t, s)

		action, _ := s.HandleKey(msg)
		assert.Equal(t, ActionNone, action.Kind)
		assert.Equal(t, stateIdle, s.state)
		assert.Equal(t, "Update cancelled.", s.status)
	}
}

func TestSettingsCheckFailure(t *testing.T) {
	env := newTestEnv(t)
	env.Checker = &fakeChecker{err: errors.New("offline")}
	s := NewSettingsScreen(env)

	runCheck(t, s)
	assert.Equal(t, stateIdle, s.state)
	assert.Contains(t, s.status, "offline")
}

func TestSettingsSingleCheckInFlight(t *testing.T) {
	env := newTestEnv(t)
	release := make(chan struct{})
	checker := &blockingChecker{release: release}
	env.Checker = checker
	s := NewSettingsScreen(env)

	_, cmd := s.HandleKey(keyOf(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, stateChecking, s.state)
	assert.False(t, s.poll(), "poll never blocks")

	_, cmd = s.HandleKey(keyOf(tea.KeyEnter))
	assert.Nil(t, cmd, "second check is ignored while one is running")

	close(release)
	require.Eventually(t, s.poll, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, checker.calls)
}

func TestSettingsBack(t *testing.T) {
	s := NewSettingsScreen(newTestEnv(t))
	s.HandleKey(keyOf(tea.KeyDown))
	action, _ := s.HandleKey(keyOf(tea.KeyEnter))
	require.Equal(t, ActionSwitch, action.Kind)
	assert.IsType(t, &MenuScreen{}, action.Next)

	action, _ = NewSettingsScreen(newTestEnv(t)).HandleKey(keyOf(tea.KeyEsc))
	assert.Equal(t, ActionSwitch, action.Kind)
}

func TestSettingsWithoutChecker(t *testing.T) {
	env := newTestEnv(t)
	env.Checker = nil
	s := NewSettingsScreen(env)

	_, cmd := s.HandleKey(keyOf(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, stateIdle, s.state)
	assert.Contains(t, s.status, "not configured")
}

type blockingChecker struct {
	release chan struct{}
	calls   int
}

func (b *blockingChecker) Check(ctx context.Context) (*update.Result, error) {
	b.calls++
	<-b.release
	return nil, nil
}
