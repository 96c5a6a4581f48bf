package tabata

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/lowaak/tabata-timer/internal/safego"
)

// HeadlessViewArgs holds the arguments for creating a HeadlessView
type HeadlessViewArgs struct {
	Logger     *log.Logger
	Controller *Controller
	Out        io.Writer
	// In carries one command per line. Nil disables keyboard commands.
	In        io.Reader
	NoColor   bool
	AutoStart bool
}

// HeadlessView drives the controller from a plain console: it prints a colored line per
// second and reads single-letter commands.
type HeadlessView struct {
	logger     *log.Logger
	controller *Controller
	out        io.Writer
	in         io.Reader
	autoStart  bool
	phaseColor map[Phase]*color.Color
	hint       *color.Color
}

const headlessHelp = "commands: [p] pause/resume  [s] start  [r] reset  [m] music  [q] quit"

func NewHeadlessView(args HeadlessViewArgs) *HeadlessView {
	if args.Logger == nil {
		panic("HeadlessView: logger cannot be nil")
	}
	if args.Controller == nil {
		panic("HeadlessView: controller cannot be nil")
	}
	if args.Out == nil {
		panic("HeadlessView: out cannot be nil")
	}

	v := &HeadlessView{
		logger:     args.Logger,
		controller: args.Controller,
		out:        args.Out,
		in:         args.In,
		autoStart:  args.AutoStart,
		phaseColor: map[Phase]*color.Color{
			PhaseIdle:     color.New(color.FgHiBlack),
			PhasePrepare:  color.New(color.FgYellow, color.Bold),
			PhaseWork:     color.New(color.FgRed, color.Bold),
			PhaseRest:     color.New(color.FgGreen, color.Bold),
			PhaseComplete: color.New(color.FgBlue, color.Bold),
		},
		hint: color.New(color.FgHiBlack),
	}
	if args.NoColor {
		for _, c := range v.phaseColor {
			c.DisableColor()
		}
		v.hint.DisableColor()
	}
	return v
}

// Run renders until the workout completes, the user quits or ctx is cancelled.
func (v *HeadlessView) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snapshots := make(chan Snapshot, 1)
	unregister := v.controller.ListenToSnapshots(snapshots)
	defer unregister()

	if v.autoStart {
		if err := v.controller.Start(ctx); err != nil {
			return fmt.Errorf("start workout: %w", err)
		}
	}
	v.hint.Fprintln(v.out, headlessHelp)

	commands := make(chan string)
	if v.in != nil {
		safego.Go(v.logger, "HeadlessView input", func() { v.readInput(ctx, commands) })
	} else {
		close(commands)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return v.render(gctx, snapshots)
	})
	g.Go(func() error {
		return v.handleCommands(gctx, cancel, commands)
	})
	return g.Wait()
}

// readInput forwards trimmed input lines until EOF, then closes commands.
func (v *HeadlessView) readInput(ctx context.Context, commands chan<- string) {
	defer close(commands)
	scanner := bufio.NewScanner(v.in)
	for scanner.Scan() {
		select {
		case commands <- strings.ToLower(strings.TrimSpace(scanner.Text())):
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		v.logger.Printf("HeadlessView: Error reading input: %v", err)
	}
}

func (v *HeadlessView) handleCommands(ctx context.Context, quit context.CancelFunc, commands <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd, ok := <-commands:
			if !ok {
				// Input is gone; keep running until the workout ends.
				<-ctx.Done()
				return nil
			}
			if cmd == "q" {
				v.logger.Println("HeadlessView: Quit requested")
				quit()
				return nil
			}
			if err := v.execute(ctx, cmd); err != nil {
				v.hint.Fprintf(v.out, "%s: %v\n", cmd, err)
			}
		}
	}
}

func (v *HeadlessView) execute(ctx context.Context, cmd string) error {
	switch cmd {
	case "p", "":
		if !v.controller.Snapshot().State.Phase.Active() {
			return v.controller.Start(ctx)
		}
		return v.controller.ToggleRunning(ctx)
	case "s":
		return v.controller.Start(ctx)
	case "r":
		return v.controller.Reset()
	case "m":
		return v.controller.ToggleMusic(ctx)
	default:
		v.hint.Fprintln(v.out, headlessHelp)
		return nil
	}
}

func (v *HeadlessView) render(ctx context.Context, snapshots <-chan Snapshot) error {
	var last Snapshot
	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-snapshots:
			if !ok {
				return ErrShutdown
			}
			if s == last {
				continue
			}
			c := v.phaseColor[s.State.Phase]
			if s.State.Phase != last.State.Phase {
				c.Fprintf(v.out, "== %s ==\n", s.State.Phase.Label())
			}
			c.Fprintln(v.out, consoleLine(s))
			last = s

			if s.State.Phase == PhaseComplete {
				v.hint.Fprintf(v.out, "workout complete: %d rounds, %s\n", s.Config.TotalSets, formatTotal(s.Config.TotalDuration()))
				return nil
			}
		}
	}
}

// consoleLine is the uncolored status line for a snapshot.
func consoleLine(s Snapshot) string {
	line := fmt.Sprintf("%-8s round %d/%d  %s", s.State.Phase, s.State.CurrentSet, s.Config.TotalSets, s.Clock())
	if s.State.Phase.Active() && !s.State.IsRunning {
		line += "  (paused)"
	}
	if s.MusicEnabled {
		line += "  ♪"
	}
	return line
}
