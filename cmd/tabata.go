package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rivo/tview"
	"github.com/spf13/pflag"

	"github.com/lowaak/tabata-timer/internal/audio"
	"github.com/lowaak/tabata-timer/internal/config"
	"github.com/lowaak/tabata-timer/internal/logging"
	"github.com/lowaak/tabata-timer/internal/safego"
	"github.com/lowaak/tabata-timer/internal/tabata"
)

const uiLogBufferSize = 256

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	settings, err := config.Load(config.NewFlagSet("tabata"), args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "tabata: %v\n", err)
		return 2
	}

	// The full-screen UI owns the terminal, so log lines are mirrored into its log view.
	var uiLogChan chan string
	var mirror io.Writer
	if !settings.Headless {
		uiLogChan = make(chan string, uiLogBufferSize)
		mirror = logging.NewLineWriter(uiLogChan)
	} else if settings.Verbose {
		mirror = os.Stderr
	}
	logger, logFile := logging.New(logging.Options{
		Path:    settings.LogFile,
		Verbose: settings.Verbose,
		Mirror:  mirror,
	})
	defer logFile.Close()

	logger.Printf("Main: starting (%s, preset=%q, music=%t, mute=%t, headless=%t)",
		settings.Workout, settings.Preset, settings.Music, settings.Mute, settings.Headless)
	if settings.ConfigFile != "" {
		logger.Printf("Main: settings read from %s", settings.ConfigFile)
	}

	var engine audio.Engine = audio.NoopEngine{}
	var cues tabata.CueSource
	if !settings.Mute {
		systemEngine := audio.NewSystemEngine(audio.SystemEngineArgs{Logger: logger})
		defer systemEngine.Close()
		engine = systemEngine
		cues = systemEngine
	}

	controller, err := tabata.NewController(tabata.ControllerArgs{
		Logger:       logger,
		Engine:       engine,
		Config:       settings.Workout,
		MusicEnabled: settings.Music,
		Presets:      settings.Presets,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tabata: %v\n", err)
		return 1
	}
	defer controller.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.Headless {
		err = runHeadless(ctx, logger, controller)
	} else {
		err = runTUI(ctx, logger, controller, cues, uiLogChan)
	}
	if err != nil {
		logger.Printf("Main: exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "tabata: %v\n", err)
		return 1
	}
	logger.Println("Main: bye")
	return 0
}

func runHeadless(ctx context.Context, logger *log.Logger, controller *tabata.Controller) error {
	view := tabata.NewHeadlessView(tabata.HeadlessViewArgs{
		Logger:     logger,
		Controller: controller,
		Out:        os.Stdout,
		In:         os.Stdin,
		AutoStart:  true,
	})
	return view.Run(ctx)
}

func runTUI(ctx context.Context, logger *log.Logger, controller *tabata.Controller, cues tabata.CueSource, uiLogChan <-chan string) error {
	app := tview.NewApplication()

	model := tabata.NewUIModel(controller, cues, logger, uiLogChan)
	defer model.Shutdown()

	uiController := tabata.NewUIController(model, controller, logger)
	defer uiController.Shutdown()

	view := tabata.NewBaseUIView(tabata.NewBaseUIViewArg{
		UIViewImpl:   tabata.NewCursesUIView(logger, app, model),
		UIModel:      model,
		UIController: uiController,
		Presets:      controller.Presets(),
		Logger:       logger,
	})
	defer view.Shutdown()

	// SIGTERM closes the UI the same way Escape does
	safego.Go(logger, "Main signal", func() {
		<-ctx.Done()
		model.RequestCloseApplication()
	})

	return view.Run()
}
