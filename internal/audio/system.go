package audio

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/lowaak/tabata-timer/internal/clock"
	"github.com/lowaak/tabata-timer/internal/events"
	"github.com/lowaak/tabata-timer/internal/safego"
)

const (
	clipCountdown  = "countdown"
	clipTransition = "transition"
	clipCompletion = "completion"
)

func loopClipName(tempo Tempo, step int) string {
	return fmt.Sprintf("loop-%s-%02d", tempo, step)
}

// SystemEngineArgs holds the dependencies of a SystemEngine.
type SystemEngineArgs struct {
	Logger *log.Logger
	// Sink receives rendered clips. Nil selects a PlayerSink.
	Sink Sink
	// NewTicker drives loop steps. Nil selects clock.NewRealTicker.
	NewTicker clock.TickerFactory
}

// SystemEngine synthesizes every sound in process and hands the clips to a Sink.
type SystemEngine struct {
	logger    *log.Logger
	sink      Sink
	newTicker clock.TickerFactory
	cueEvent  *events.CallbackEvent[CueEvent]
	wg        sync.WaitGroup

	mu    sync.Mutex
	ready bool
	clips map[string]Clip
	loop  *loopHandle
}

// loopHandle is the single running background loop. Its tempo is fixed at start.
type loopHandle struct {
	tempo    Tempo
	nextStep int
	stop     chan struct{}
	once     sync.Once
}

func (h *loopHandle) cancel() {
	h.once.Do(func() { close(h.stop) })
}

var _ Engine = (*SystemEngine)(nil)

// NewSystemEngine creates an engine. Nothing is rendered until EnsureReady.
func NewSystemEngine(args SystemEngineArgs) *SystemEngine {
	if args.Logger == nil {
		panic("SystemEngine: logger cannot be nil")
	}
	sink := args.Sink
	if sink == nil {
		sink = NewPlayerSink(args.Logger)
	}
	newTicker := args.NewTicker
	if newTicker == nil {
		newTicker = clock.NewRealTicker
	}
	return &SystemEngine{
		logger:    args.Logger,
		sink:      sink,
		newTicker: newTicker,
		cueEvent:  events.NewCallbackEvent[CueEvent](false),
		clips:     make(map[string]Clip),
	}
}

// EnsureReady renders the cue and loop clips on first use. Rendering happens outside the
// engine lock so cues and loop steps never wait for it. If ctx is cancelled the next call
// starts over.
func (e *SystemEngine) EnsureReady(ctx context.Context) error {
	if !e.sink.Available() {
		return ErrUnavailable
	}

	e.mu.Lock()
	ready := e.ready
	e.mu.Unlock()
	if ready {
		return nil
	}

	clips, err := renderClips(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		// A concurrent call finished first.
		return nil
	}
	e.clips = clips
	e.ready = true
	e.logger.Printf("SystemEngine: ready with %d clips", len(clips))
	return nil
}

func renderClips(ctx context.Context) (map[string]Clip, error) {
	clips := map[string]Clip{
		clipCountdown:  Render(countdownVoices),
		clipTransition: Render(transitionVoices),
		clipCompletion: Render(completionVoices),
	}
	for _, tempo := range []Tempo{TempoSlow, TempoFast} {
		for step := 0; step < StepsPerLoop; step++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if voices := Pattern(tempo, step); len(voices) > 0 {
				clips[loopClipName(tempo, step)] = Render(voices)
			}
		}
	}
	return clips, nil
}

// ListenToCues registers callback for every cue or loop step that is played.
// Callbacks run on engine goroutines and must not block.
func (e *SystemEngine) ListenToCues(callback func(CueEvent)) func() {
	return e.cueEvent.Listen(callback)
}

func (e *SystemEngine) PlayCountdownCue() {
	e.playCue(clipCountdown, CueCountdown)
}

func (e *SystemEngine) PlayPhaseTransitionCue() {
	e.playCue(clipTransition, CueTransition)
}

func (e *SystemEngine) PlayCompletionCue() {
	e.playCue(clipCompletion, CueCompletion)
}

func (e *SystemEngine) playCue(name string, kind CueKind) {
	e.mu.Lock()
	if !e.ready {
		e.mu.Unlock()
		return
	}
	e.sink.Play(name, kind, e.clips[name])
	e.mu.Unlock()

	e.cueEvent.Notify(CueEvent{Kind: kind})
}

// StartLoop replaces any running loop with a new one at tempo, starting at step 0.
// The first step sounds one step interval after the call.
func (e *SystemEngine) StartLoop(tempo Tempo) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLoopLocked()
	if !e.ready {
		return
	}

	handle := &loopHandle{tempo: tempo, stop: make(chan struct{})}
	e.loop = handle
	ticker := e.newTicker(StepInterval(tempo))
	safego.GoWG(&e.wg, e.logger, "audio loop", func() { e.runLoop(handle, ticker) })
}

// StopLoop cancels the running loop, if any.
func (e *SystemEngine) StopLoop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLoopLocked()
}

func (e *SystemEngine) stopLoopLocked() {
	if e.loop == nil {
		return
	}
	e.loop.cancel()
	e.loop = nil
}

// LoopStatus reports whether a loop is running, its tempo and the step it plays next.
func (e *SystemEngine) LoopStatus() (active bool, tempo Tempo, nextStep int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loop == nil {
		return false, TempoSlow, 0
	}
	return true, e.loop.tempo, e.loop.nextStep
}

func (e *SystemEngine) runLoop(handle *loopHandle, ticker clock.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-handle.stop:
			return
		case <-ticker.C():
			if !e.playStep(handle) {
				return
			}
		}
	}
}

// playStep sounds the handle's next step. It returns false once the handle has been
// replaced or stopped; the ownership check and the hand-off to the sink happen under
// the same lock so a cancelled loop can never sound another step.
func (e *SystemEngine) playStep(handle *loopHandle) bool {
	e.mu.Lock()
	if e.loop != handle {
		e.mu.Unlock()
		return false
	}
	step := handle.nextStep
	handle.nextStep = (step + 1) % StepsPerLoop
	name := loopClipName(handle.tempo, step)
	if clip, ok := e.clips[name]; ok {
		e.sink.Play(name, CueLoopStep, clip)
	}
	e.mu.Unlock()

	e.cueEvent.Notify(CueEvent{Kind: CueLoopStep, Tempo: handle.tempo, Step: step})
	return true
}

// Close stops the loop, waits for its goroutine and releases the sink.
func (e *SystemEngine) Close() error {
	e.StopLoop()
	e.wg.Wait()
	e.cueEvent.Close()
	if closer, ok := e.sink.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
