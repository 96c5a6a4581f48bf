package tabata

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lowaak/tabata-timer/internal/audio"
	"github.com/lowaak/tabata-timer/internal/clock"
	"github.com/lowaak/tabata-timer/internal/events"
	"github.com/lowaak/tabata-timer/internal/safego"
)

// TickPeriod is the real time represented by one tick.
const TickPeriod = time.Second

// commandKind represents commands sent to the controller goroutine
type commandKind int

const (
	cmdStart commandKind = iota
	cmdToggleRunning
	cmdReset
	cmdSetConfig
	cmdToggleMusic
)

func (k commandKind) String() string {
	switch k {
	case cmdStart:
		return "start"
	case cmdToggleRunning:
		return "toggle-running"
	case cmdReset:
		return "reset"
	case cmdSetConfig:
		return "set-config"
	case cmdToggleMusic:
		return "toggle-music"
	default:
		return "unknown"
	}
}

type command struct {
	kind  commandKind
	patch ConfigPatch
	reply chan error
}

// tickSource is the repeating one-second trigger of a running session.
type tickSource struct {
	ticker clock.Ticker
	once   sync.Once
}

func newTickSource(factory clock.TickerFactory, period time.Duration) *tickSource {
	return &tickSource{ticker: factory(period)}
}

// C returns the tick channel, or nil for a nil source so a select never fires on it.
func (t *tickSource) C() <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.ticker.C()
}

// cancel stops the source. It is safe to call repeatedly and on a nil source.
func (t *tickSource) cancel() {
	if t == nil {
		return
	}
	t.once.Do(t.ticker.Stop)
}

// ControllerArgs holds the dependencies and initial settings of a Controller.
type ControllerArgs struct {
	Logger *log.Logger
	Engine audio.Engine
	Config Config
	// MusicEnabled is the initial background music preference.
	MusicEnabled bool
	// Presets available to ApplyPreset. Nil selects BuiltinPresets.
	Presets []Preset
	// NewTicker creates tick sources. Nil selects clock.NewRealTicker.
	NewTicker clock.TickerFactory
}

// Controller owns the workout state. A single goroutine applies every command and tick
// through Step and performs the resulting effects, so state is never shared.
type Controller struct {
	logger    *log.Logger
	engine    audio.Engine
	presets   []Preset
	newTicker clock.TickerFactory

	snapshotEvent *events.ChannelEvent[Snapshot]

	// Owned by the run goroutine.
	state  State
	config Config
	music  bool
	runID  string
	ticks  *tickSource

	// Copy of the last published snapshot for synchronous readers (protected by mu)
	mu     sync.RWMutex
	latest Snapshot

	// Goroutine management
	cmdChan      chan command
	doneChan     chan struct{} // Closed to signal shutdown
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewController validates args.Config and starts the controller goroutine in IDLE.
func NewController(args ControllerArgs) (*Controller, error) {
	if args.Logger == nil {
		panic("Controller: logger cannot be nil")
	}
	if args.Engine == nil {
		panic("Controller: engine cannot be nil")
	}
	if err := args.Config.Validate(); err != nil {
		return nil, err
	}

	presets := args.Presets
	if presets == nil {
		presets = BuiltinPresets
	}
	newTicker := args.NewTicker
	if newTicker == nil {
		newTicker = clock.NewRealTicker
	}

	c := &Controller{
		logger:        args.Logger,
		engine:        args.Engine,
		presets:       presets,
		newTicker:     newTicker,
		snapshotEvent: events.NewChannelEvent[Snapshot](true, events.LatestWins),
		state:         IdleState(args.Config),
		config:        args.Config,
		music:         args.MusicEnabled,
		cmdChan:       make(chan command),
		doneChan:      make(chan struct{}),
	}
	c.publish()

	c.wg.Add(1)
	safego.Go(args.Logger, "controller loop", func() { c.run() })

	c.logger.Printf("Controller: ready (%s, music=%t)", c.config, c.music)
	return c, nil
}

// ListenToSnapshots sends the latest snapshot to ch immediately and every later one as it
// is published. A slow listener only ever misses intermediate snapshots, never the latest.
func (c *Controller) ListenToSnapshots(ch chan Snapshot) func() {
	return c.snapshotEvent.Listen(ch)
}

// Snapshot returns the most recently published snapshot.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// Presets returns the presets ApplyPreset accepts.
func (c *Controller) Presets() []Preset {
	return append([]Preset(nil), c.presets...)
}

// Start begins a run from IDLE or COMPLETE. Audio is activated before the run starts.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if err := CheckEvent(c.Snapshot().State, EventStart); err != nil {
		return err
	}
	c.ensureAudio(ctx)
	return c.send(command{kind: cmdStart})
}

// ToggleRunning pauses or resumes the run in progress. Resuming activates audio first.
func (c *Controller) ToggleRunning(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	state := c.Snapshot().State
	if err := CheckEvent(state, EventToggleRunning); err != nil {
		return err
	}
	if !state.IsRunning {
		c.ensureAudio(ctx)
	}
	return c.send(command{kind: cmdToggleRunning})
}

// Reset returns to IDLE from any phase and silences the music.
func (c *Controller) Reset() error {
	return c.send(command{kind: cmdReset})
}

// SetConfig applies a partial configuration edit. It fails with ErrConfigLocked during a
// run and with ErrInvalidConfig for out-of-range values, leaving state untouched.
func (c *Controller) SetConfig(patch ConfigPatch) error {
	return c.send(command{kind: cmdSetConfig, patch: patch})
}

// ApplyPreset replaces the whole configuration with the named preset.
func (c *Controller) ApplyPreset(name string) error {
	preset, err := FindPreset(c.presets, name)
	if err != nil {
		return err
	}
	if err := c.SetConfig(PatchFrom(preset.Config)); err != nil {
		return err
	}
	c.logger.Printf("Controller: preset %q applied", preset.Name)
	return nil
}

// ToggleMusic flips the background music preference. Turning music on activates audio
// first. Phase and time are never affected.
func (c *Controller) ToggleMusic(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if !c.Snapshot().MusicEnabled {
		c.ensureAudio(ctx)
	}
	return c.send(command{kind: cmdToggleMusic})
}

// Shutdown stops ticking and music and ends the controller goroutine.
// Safe to call multiple times - only the first call has effect
func (c *Controller) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.logger.Printf("Controller: Shutting down")
		close(c.doneChan)
		c.wg.Wait()
		c.snapshotEvent.Close()
		c.logger.Printf("Controller: Shutdown complete")
	})
}

func (c *Controller) checkOpen() error {
	select {
	case <-c.doneChan:
		return ErrShutdown
	default:
		return nil
	}
}

// ensureAudio waits for audio activation. Failure leaves the timer silent but working.
func (c *Controller) ensureAudio(ctx context.Context) {
	if err := c.engine.EnsureReady(ctx); err != nil {
		c.logger.Printf("Controller: audio not ready, continuing silently: %v", err)
	}
}

// send hands cmd to the controller goroutine and waits for its result. The channel is
// unbuffered, so once the send succeeds the command is guaranteed a reply.
func (c *Controller) send(cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case c.cmdChan <- cmd:
		return <-cmd.reply
	case <-c.doneChan:
		return ErrShutdown
	}
}

// run is the controller goroutine.
func (c *Controller) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.doneChan:
			c.ticks.cancel()
			c.ticks = nil
			c.engine.StopLoop()
			c.logger.Printf("Controller: Goroutine exiting")
			return

		case cmd := <-c.cmdChan:
			err := c.handleCommand(cmd)
			if err != nil {
				c.logger.Printf("Controller: %s rejected: %v", cmd.kind, err)
			}
			cmd.reply <- err

		case <-c.ticks.C():
			c.handleTick()
		}
	}
}

func (c *Controller) handleCommand(cmd command) error {
	switch cmd.kind {
	case cmdStart:
		if err := CheckEvent(c.state, EventStart); err != nil {
			return err
		}
		c.runID = uuid.NewString()
		c.logger.Printf("Controller: run %s started (%s)", c.runID, c.config)
		c.step(EventStart)

	case cmdToggleRunning:
		if err := CheckEvent(c.state, EventToggleRunning); err != nil {
			return err
		}
		c.step(EventToggleRunning)
		if c.state.IsRunning {
			c.logger.Printf("Controller: run %s resumed at %s %ds", c.runID, c.state.Phase, c.state.TimeLeft)
		} else {
			c.logger.Printf("Controller: run %s paused at %s %ds", c.runID, c.state.Phase, c.state.TimeLeft)
		}

	case cmdReset:
		c.step(EventReset)
		c.logger.Printf("Controller: reset")

	case cmdSetConfig:
		state, config, err := Reconfigure(c.state, c.config, cmd.patch)
		if err != nil {
			return err
		}
		c.state, c.config = state, config
		c.publish()
		c.logger.Printf("Controller: config set to %s", c.config)

	case cmdToggleMusic:
		c.music = !c.music
		c.perform(MusicEffects(c.state, c.music))
		c.publish()
		c.logger.Printf("Controller: music %s", onOff(c.music))
	}
	return nil
}

func (c *Controller) handleTick() {
	prev := c.state
	c.step(EventTick)
	if c.state.Phase != prev.Phase {
		c.logger.Printf("Controller: run %s %s -> %s (set %d/%d)",
			c.runID, prev.Phase, c.state.Phase, c.state.CurrentSet, c.config.TotalSets)
	}
}

// step feeds event through the state machine, performs the effects and publishes.
func (c *Controller) step(event Event) {
	next, effects := Step(c.state, event, c.config)
	c.perform(effects)
	c.state = next
	c.publish()
}

func (c *Controller) perform(effects []Effect) {
	for _, effect := range effects {
		switch effect.Kind {
		case EffectCountdownCue:
			c.engine.PlayCountdownCue()
		case EffectTransitionCue:
			c.engine.PlayPhaseTransitionCue()
		case EffectCompletionCue:
			c.engine.PlayCompletionCue()
		case EffectStartLoop:
			if c.music {
				c.engine.StartLoop(effect.Tempo)
			}
		case EffectStopLoop:
			c.engine.StopLoop()
		case EffectStartTicking:
			c.ticks.cancel()
			c.ticks = newTickSource(c.newTicker, TickPeriod)
		case EffectStopTicking:
			c.ticks.cancel()
			c.ticks = nil
		case EffectPublishFrame:
			c.publishState(effect.Frame)
		}
	}
}

func (c *Controller) publish() {
	c.publishState(c.state)
}

func (c *Controller) publishState(state State) {
	snapshot := Snapshot{
		State:        state,
		Config:       c.config,
		MusicEnabled: c.music,
		RunID:        c.runID,
	}
	c.mu.Lock()
	c.latest = snapshot
	c.mu.Unlock()
	c.snapshotEvent.Notify(snapshot)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
