package tabata

import (
	"bytes"
	"context"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for a logger shared across goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type uiHarness struct {
	*harness
	model *UIModel
	ui    *UIController
	logs  *syncBuffer
}

func newUIHarness(t *testing.T) *uiHarness {
	t.Helper()
	h := newHarness(t, scenarioConfig, false)
	logs := &syncBuffer{}
	logger := log.New(logs, "", 0)
	model := NewUIModel(h.Controller, nil, logger, make(chan string))
	ui := NewUIController(model, h.Controller, logger)
	t.Cleanup(func() {
		ui.Shutdown()
		model.Shutdown()
	})
	return &uiHarness{harness: h, model: model, ui: ui, logs: logs}
}

// waitModel blocks until the UI model has seen a snapshot matching cond.
func (u *uiHarness) waitModel(t *testing.T, cond func(Snapshot) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(u.model.GetSnapshot()) }, time.Second, time.Millisecond)
}

func TestNewUIController_Validation(t *testing.T) {
	u := newUIHarness(t)
	logger := log.New(&bytes.Buffer{}, "", 0)
	assert.Panics(t, func() { NewUIController(nil, u.Controller, logger) })
	assert.Panics(t, func() { NewUIController(u.model, nil, logger) })
	assert.Panics(t, func() { NewUIController(u.model, u.Controller, nil) })
}

func TestUIController_ToggleWorkout(t *testing.T) {
	u := newUIHarness(t)
	u.waitModel(t, func(s Snapshot) bool { return s.Config == scenarioConfig })

	u.ui.ToggleWorkout()
	u.waitModel(t, func(s Snapshot) bool { return s.State.Phase == PhasePrepare && s.State.IsRunning })

	u.ui.ToggleWorkout()
	u.waitModel(t, func(s Snapshot) bool { return s.State.Phase == PhasePrepare && !s.State.IsRunning })

	u.ui.ToggleWorkout()
	u.waitModel(t, func(s Snapshot) bool { return s.State.IsRunning })
	assert.Equal(t, 2, u.tickers.Count(), "resume creates a fresh tick source")
}

func TestUIController_ResetWorkout(t *testing.T) {
	u := newUIHarness(t)
	require.NoError(t, u.Start(context.Background()))

	u.ui.ResetWorkout()
	assert.Equal(t, IdleState(scenarioConfig), u.state())
}

func TestUIController_ToggleMusic(t *testing.T) {
	u := newUIHarness(t)

	u.ui.ToggleMusic()
	require.Eventually(t, func() bool { return u.Snapshot().MusicEnabled }, time.Second, time.Millisecond)
}

func TestUIController_OnPresetSelected(t *testing.T) {
	u := newUIHarness(t)
	presets := u.Presets()
	require.NotEmpty(t, presets)

	u.ui.OnPresetSelected(len(presets) - 1)
	assert.Equal(t, presets[len(presets)-1].Config, u.Snapshot().Config)

	u.ui.OnPresetSelected(len(presets))
	assert.Contains(t, u.logs.String(), "Invalid preset index")
}

func TestUIController_AdjustSetting(t *testing.T) {
	u := newUIHarness(t)

	u.ui.AdjustSetting(SettingWork, 2)
	assert.Equal(t, scenarioConfig.WorkDuration+10, u.Snapshot().Config.WorkDuration)

	u.ui.AdjustSetting(SettingSets, -10)
	assert.Equal(t, MinSets, u.Snapshot().Config.TotalSets, "clamped to the lower bound")

	u.ui.AdjustSetting(SettingPrepare, 1)
	assert.Equal(t, scenarioConfig.PrepareDuration+1, u.state().TimeLeft, "idle timer follows the prepare duration")
}

func TestUIController_AdjustSettingWhileRunningIsLogged(t *testing.T) {
	u := newUIHarness(t)
	require.NoError(t, u.Start(context.Background()))

	u.ui.AdjustSetting(SettingRest, 1)
	assert.Equal(t, scenarioConfig, u.Snapshot().Config)
	assert.True(t, strings.Contains(u.logs.String(), "Settings are locked"))
}

func TestUIController_ModeAndEscape(t *testing.T) {
	u := newUIHarness(t)

	u.ui.OnModeChange(UIModePresets)
	assert.Equal(t, UIModePresets, u.model.GetUIState().Mode)
	assert.Contains(t, u.logs.String(), "Switching to Presets mode")

	closeChan := make(chan struct{}, 1)
	defer u.model.ListenToCloseApplication(closeChan)()
	u.ui.OnEscapeKey()
	select {
	case <-closeChan:
	case <-time.After(time.Second):
		t.Fatal("escape did not request close")
	}
}
