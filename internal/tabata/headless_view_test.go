package tabata

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHeadlessView(h *harness, out *syncBuffer, in string, autoStart bool) *HeadlessView {
	args := HeadlessViewArgs{
		Logger:     log.New(&bytes.Buffer{}, "", 0),
		Controller: h.Controller,
		Out:        out,
		NoColor:    true,
		AutoStart:  autoStart,
	}
	if in != "" {
		args.In = strings.NewReader(in)
	}
	return NewHeadlessView(args)
}

// runAsync runs the view and returns a channel with its result.
func runAsync(ctx context.Context, v *HeadlessView) <-chan error {
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("headless view did not return")
		return nil
	}
}

func TestNewHeadlessView_Validation(t *testing.T) {
	h := newHarness(t, scenarioConfig, false)
	logger := log.New(&bytes.Buffer{}, "", 0)
	assert.Panics(t, func() { NewHeadlessView(HeadlessViewArgs{Controller: h.Controller, Out: &bytes.Buffer{}}) })
	assert.Panics(t, func() { NewHeadlessView(HeadlessViewArgs{Logger: logger, Out: &bytes.Buffer{}}) })
	assert.Panics(t, func() { NewHeadlessView(HeadlessViewArgs{Logger: logger, Controller: h.Controller}) })
}

func TestHeadlessView_RunsToCompletion(t *testing.T) {
	cfg := Config{WorkDuration: 2, RestDuration: 1, TotalSets: 2, PrepareDuration: 1}
	h := newHarness(t, cfg, false)
	out := &syncBuffer{}

	done := runAsync(context.Background(), newTestHeadlessView(h, out, "", true))
	require.Eventually(t, func() bool { return h.tickers.Count() == 1 }, time.Second, time.Millisecond)

	h.tick(t, cfg.TotalDuration())
	require.NoError(t, waitDone(t, done))

	assert.Equal(t, PhaseComplete, h.state().Phase)
	text := out.String()
	assert.Contains(t, text, headlessHelp)
	assert.Contains(t, text, "== FINISHED ==")
	assert.Contains(t, text, "COMPLETE round 2/2  00:00")
	assert.Contains(t, text, "workout complete: 2 rounds, 6s")
}

func TestHeadlessView_Commands(t *testing.T) {
	h := newHarness(t, scenarioConfig, false)
	out := &syncBuffer{}

	done := runAsync(context.Background(), newTestHeadlessView(h, out, "m\np\nx\nq\n", true))
	require.NoError(t, waitDone(t, done))

	snap := h.Snapshot()
	assert.True(t, snap.MusicEnabled)
	assert.Equal(t, PhasePrepare, snap.State.Phase)
	assert.False(t, snap.State.IsRunning, "p paused the run")
	assert.GreaterOrEqual(t, strings.Count(out.String(), headlessHelp), 2, "unknown commands print the help")
}

func TestHeadlessView_StartCommandWithoutAutoStart(t *testing.T) {
	h := newHarness(t, scenarioConfig, false)
	out := &syncBuffer{}

	done := runAsync(context.Background(), newTestHeadlessView(h, out, "s\ns\nq\n", false))
	require.NoError(t, waitDone(t, done))

	assert.Equal(t, PhasePrepare, h.state().Phase)
	assert.Contains(t, out.String(), "s: "+ErrAlreadyStarted.Error())
}

func TestHeadlessView_ContextCancel(t *testing.T) {
	h := newHarness(t, scenarioConfig, false)
	ctx, cancel := context.WithCancel(context.Background())

	done := runAsync(ctx, newTestHeadlessView(h, &syncBuffer{}, "", true))
	require.Eventually(t, func() bool { return h.tickers.Count() == 1 }, time.Second, time.Millisecond)
	cancel()

	require.NoError(t, waitDone(t, done))
	assert.True(t, h.state().IsRunning, "leaving the view does not stop the controller")
}

func TestConsoleLine(t *testing.T) {
	s := Snapshot{
		State:        State{Phase: PhaseRest, CurrentSet: 1, TimeLeft: 9, IsRunning: false},
		Config:       scenarioConfig,
		MusicEnabled: true,
	}
	assert.Equal(t, "REST     round 1/3  00:09  (paused)  ♪", consoleLine(s))
}
