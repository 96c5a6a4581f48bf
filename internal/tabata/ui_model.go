package tabata

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/tabata-timer/internal/audio"
	"github.com/lowaak/tabata-timer/internal/events"
	"github.com/lowaak/tabata-timer/internal/safego"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode UIMode
}

// SnapshotSource publishes workout snapshots. *Controller implements it.
type SnapshotSource interface {
	ListenToSnapshots(ch chan Snapshot) func()
}

// CueSource publishes what the audio engine plays. *audio.SystemEngine implements it.
type CueSource interface {
	ListenToCues(callback func(audio.CueEvent)) func()
}

// UIModel collects everything the views render: workout snapshots, audio beats, the log
// tail and the UI mode.
type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	snapshotEvent         *events.ChannelEvent[Snapshot]
	snapshot              Snapshot
	beatEvent             *events.ChannelEvent[audio.CueEvent]
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
	unregisterCues        func()
}

const maxLogLines = 1000

// NewUIModel starts following snapshots and uiLogChan. cues may be nil when sound is off.
func NewUIModel(snapshots SnapshotSource, cues CueSource, logger *log.Logger, uiLogChan <-chan string) *UIModel {
	if snapshots == nil {
		panic("UIModel: snapshots cannot be nil")
	}
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false, events.DropNewest),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true, events.DropNewest),
		uiStateEvent:          events.NewChannelEvent[UIState](true, events.LatestWins),
		uiState:               UIState{Mode: UIModeTimer},
		snapshotEvent:         events.NewChannelEvent[Snapshot](true, events.LatestWins),
		beatEvent:             events.NewChannelEvent[audio.CueEvent](false, events.LatestWins),
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
		unregisterCues:        func() {},
	}

	snapshotChan := make(chan Snapshot, 1)
	unregisterSnapshots := snapshots.ListenToSnapshots(snapshotChan)
	model.wg.Add(1)
	safego.Go(model.logger, "UIModel snapshots", func() { model.listenToSnapshots(ctx, snapshotChan, unregisterSnapshots) })

	if cues != nil {
		model.unregisterCues = cues.ListenToCues(model.beatEvent.Notify)
	}

	// Read from the UI log channel and populate logLines
	model.wg.Add(1)
	safego.Go(model.logger, "UIModel log", func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.unregisterCues()
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToCloseApplication(ch chan struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToUIState registers a channel to receive UI state changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToUIState(ch chan UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// ListenToSnapshot registers a channel to receive workout snapshots
func (m *UIModel) ListenToSnapshot(ch chan Snapshot) func() {
	return m.snapshotEvent.Listen(ch)
}

// GetSnapshot returns the most recent workout snapshot
func (m *UIModel) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// ListenToBeat registers a channel to receive every cue and loop step played
func (m *UIModel) ListenToBeat(ch chan audio.CueEvent) func() {
	return m.beatEvent.Listen(ch)
}

func (m *UIModel) listenToSnapshots(ctx context.Context, ch chan Snapshot, unregister func()) {
	defer m.wg.Done()
	defer unregister()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-ch:
			if !ok {
				return
			}
			m.mu.Lock()
			m.snapshot = snapshot
			m.mu.Unlock()
			m.snapshotEvent.Notify(snapshot)
		}
	}
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}
			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				// Remove oldest lines, keep the most recent maxLogLines
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()
			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}

	start := max(len(m.logLines)-n, 0)
	result := make([]string, len(m.logLines)-start)
	copy(result, m.logLines[start:])
	return result
}
