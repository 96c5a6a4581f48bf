package tabata

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/tabata-timer/internal/audio"
	"github.com/lowaak/tabata-timer/internal/events"
)

type fakeSnapshots struct {
	event *events.ChannelEvent[Snapshot]
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{event: events.NewChannelEvent[Snapshot](true, events.LatestWins)}
}

func (f *fakeSnapshots) ListenToSnapshots(ch chan Snapshot) func() {
	return f.event.Listen(ch)
}

type fakeCues struct {
	event *events.CallbackEvent[audio.CueEvent]
}

func (f *fakeCues) ListenToCues(callback func(audio.CueEvent)) func() {
	return f.event.Listen(callback)
}

func newTestUIModel(t *testing.T, cues CueSource) (*UIModel, *fakeSnapshots, chan string) {
	t.Helper()
	snapshots := newFakeSnapshots()
	logChan := make(chan string, 10)
	model := NewUIModel(snapshots, cues, log.New(&bytes.Buffer{}, "", 0), logChan)
	t.Cleanup(model.Shutdown)
	return model, snapshots, logChan
}

func TestNewUIModel_Validation(t *testing.T) {
	logger := log.New(&bytes.Buffer{}, "", 0)
	logChan := make(chan string)
	assert.Panics(t, func() { NewUIModel(nil, nil, logger, logChan) })
	assert.Panics(t, func() { NewUIModel(newFakeSnapshots(), nil, nil, logChan) })
	assert.Panics(t, func() { NewUIModel(newFakeSnapshots(), nil, logger, nil) })
}

func TestUIModel_FollowsSnapshots(t *testing.T) {
	model, snapshots, _ := newTestUIModel(t, nil)

	ch := make(chan Snapshot, 1)
	defer model.ListenToSnapshot(ch)()

	snap := Snapshot{State: IdleState(scenarioConfig), Config: scenarioConfig}
	snapshots.event.Notify(snap)

	select {
	case got := <-ch:
		assert.Equal(t, snap, got)
	case <-time.After(time.Second):
		t.Fatal("snapshot not forwarded")
	}
	assert.Equal(t, snap, model.GetSnapshot())
}

func TestUIModel_ForwardsCues(t *testing.T) {
	cues := &fakeCues{event: events.NewCallbackEvent[audio.CueEvent](false)}
	model, _, _ := newTestUIModel(t, cues)
	require.Equal(t, 1, cues.event.ListenerCount())

	ch := make(chan audio.CueEvent, 1)
	defer model.ListenToBeat(ch)()

	cues.event.Notify(audio.CueEvent{Kind: audio.CueLoopStep, Step: 4})
	select {
	case got := <-ch:
		assert.Equal(t, 4, got.Step)
	case <-time.After(time.Second):
		t.Fatal("beat not forwarded")
	}

	model.Shutdown()
	assert.Zero(t, cues.event.ListenerCount())
}

func TestUIModel_LogTail(t *testing.T) {
	model, _, logChan := newTestUIModel(t, nil)

	assert.Empty(t, model.GetLogTail(5))

	logChan <- "first\n"
	logChan <- "second\n"
	logChan <- "third\n"
	require.Eventually(t, func() bool { return len(model.GetLogTail(10)) == 3 }, time.Second, time.Millisecond)

	assert.Equal(t, []string{"second\n", "third\n"}, model.GetLogTail(2))
	assert.Empty(t, model.GetLogTail(0))
}

func TestUIModel_LogTailIsBounded(t *testing.T) {
	model, _, logChan := newTestUIModel(t, nil)

	for i := 0; i < maxLogLines+5; i++ {
		logChan <- "line\n"
	}
	logChan <- "last\n"
	require.Eventually(t, func() bool {
		tail := model.GetLogTail(1)
		return len(tail) == 1 && tail[0] == "last\n"
	}, time.Second, time.Millisecond)
	assert.Len(t, model.GetLogTail(maxLogLines*2), maxLogLines)
}

func TestUIModel_SetMode(t *testing.T) {
	model, _, _ := newTestUIModel(t, nil)
	assert.Equal(t, UIModeTimer, model.GetUIState().Mode)

	ch := make(chan UIState, 1)
	defer model.ListenToUIState(ch)()
	model.SetMode(UIModeSettings)
	model.SetMode(UIModeSettings)

	assert.Equal(t, UIModeSettings, model.GetUIState().Mode)
	require.Len(t, ch, 1, "repeating the current mode does not notify")
	assert.Equal(t, UIState{Mode: UIModeSettings}, <-ch)
}

func TestUIModel_RequestCloseApplication(t *testing.T) {
	model, _, _ := newTestUIModel(t, nil)

	ch := make(chan struct{}, 1)
	defer model.ListenToCloseApplication(ch)()
	model.RequestCloseApplication()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("close request not delivered")
	}
}
