package tabata

import "github.com/lowaak/tabata-timer/internal/audio"

// UIViewImpl defines the interface for framework-specific UI implementations
type UIViewImpl interface {
	// Initialize is called after construction to set up framework-specific widgets
	// controller is used to handle UI events
	Initialize(controller *UIController)

	// SetupKeyboardHandlers sets up keyboard event handlers
	// controller is used to handle keyboard events
	SetupKeyboardHandlers(controller *UIController)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// QueueUpdate runs f on the UI goroutine and redraws. Every other method except
	// Run and Stop must only be called from f once Run has started. QueueUpdate returns
	// after f ran, or without running f once the UI has stopped.
	QueueUpdate(f func())

	// --- Mode Management ---

	// SetMode switches the UI to the specified mode
	SetMode(mode UIMode)

	// GetCurrentMode returns the currently active UI mode
	GetCurrentMode() UIMode

	// --- Log View (shared across modes) ---

	// GetLogViewHeight returns the visible height of the log view
	GetLogViewHeight() int

	// ClearLogView clears the log view
	ClearLogView()

	// WriteLogLine writes a line to the log view
	WriteLogLine(line string) error

	// --- Timer Mode ---

	// UpdateSnapshot renders a workout snapshot in every mode that shows one
	UpdateSnapshot(snapshot Snapshot)

	// UpdateBeat flashes the beat indicator for a cue or loop step
	UpdateBeat(event audio.CueEvent)

	// --- Presets Mode ---

	// SetPresetList populates the preset selection list
	SetPresetList(presets []Preset)
}
