package tabata

import (
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/tabata-timer/internal/audio"
	"github.com/lowaak/tabata-timer/internal/safego"
)

// Page names for tview.Pages
const (
	pageTimer    = "timer"
	pagePresets  = "presets"
	pageSettings = "settings"
)

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	model       *UIModel
	currentMode UIMode
	stopped     chan struct{} // closed when Run returns

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView  *tview.TextView
	mainFlex *tview.Flex // Main layout: mode content on left, logs on right

	// Timer mode components
	timerFlex       *tview.Flex
	timerTabWidgets []*tview.Box
	timerPanel      *tview.TextView
	beatPanel       *tview.TextView

	// Presets mode components
	presetsFlex        *tview.Flex
	presetsTabWidgets  []*tview.Box
	presetList         *tview.List
	presetDetailsPanel *tview.TextView
	presets            []Preset

	// Settings mode components
	settingsFlex       *tview.Flex
	settingsTabWidgets []*tview.Box
	settingsList       *tview.List
	settingsHelp       *tview.TextView
}

func NewCursesUIView(logger *log.Logger, app *tview.Application, model *UIModel) *CursesUIViewImpl {
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		model:       model,
		currentMode: UIModeTimer,
		stopped:     make(chan struct{}),
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// Don't use SetChangedFunc with app.Draw() on the log view: it can hang during
	// shutdown. BaseUIView queues every update together with a redraw.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.pages = tview.NewPages()

	ui.initTimerMode()
	ui.initPresetsMode(controller)
	ui.initSettingsMode()

	ui.pages.AddPage(pageTimer, ui.timerFlex, true, true)
	ui.pages.AddPage(pagePresets, ui.presetsFlex, true, false)
	ui.pages.AddPage(pageSettings, ui.settingsFlex, true, false)

	// Create main layout: pages on left, logs on right
	ui.mainFlex = tview.NewFlex().
		AddItem(ui.pages, 0, 2, true).
		AddItem(ui.logView, 0, 1, false)

	ui.UpdateSnapshot(ui.model.GetSnapshot())
	ui.setFocusForCurrentMode()
}

func modeBar() string {
	return "[yellow]1[white] Timer  |  [yellow]2[white] Presets  |  [yellow]3[white] Settings  |  [yellow]Esc[white] Quit"
}

// initTimerMode sets up the Timer mode UI
func (ui *CursesUIViewImpl) initTimerMode() {
	instructionsText := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	instructionsText.SetText(modeBar())

	ui.timerPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.timerPanel.SetBorder(true).SetTitle(" Tabata ")

	ui.beatPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.beatPanel.SetBorder(true).SetTitle(" Beat ")

	ui.timerTabWidgets = append(ui.timerTabWidgets, ui.timerPanel.Box)

	ui.timerFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(instructionsText, 1, 0, false).
		AddItem(ui.timerPanel, 0, 1, true).
		AddItem(ui.beatPanel, 3, 0, false)
}

// initPresetsMode sets up the Presets mode UI
func (ui *CursesUIViewImpl) initPresetsMode(controller *UIController) {
	instructionsText := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	instructionsText.SetText(modeBar())

	ui.presetList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Printf("UI: Preset selected: index=%d, name=%s", index, mainText)
			controller.OnPresetSelected(index)
		}).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.updatePresetDetailsDisplay(index)
		})
	ui.presetList.SetBorder(true).SetTitle(" Presets ")

	ui.presetDetailsPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.presetDetailsPanel.SetBorder(true).SetTitle(" Details ")
	ui.updatePresetDetailsDisplay(-1)

	ui.presetsTabWidgets = append(ui.presetsTabWidgets, ui.presetList.Box)
	ui.presetsTabWidgets = append(ui.presetsTabWidgets, ui.presetDetailsPanel.Box)

	content := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.presetList, 0, 1, true).
		AddItem(ui.presetDetailsPanel, 0, 1, false)

	ui.presetsFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(instructionsText, 1, 0, false).
		AddItem(content, 0, 1, true)
}

// initSettingsMode sets up the Settings mode UI
func (ui *CursesUIViewImpl) initSettingsMode() {
	instructionsText := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	instructionsText.SetText(modeBar())

	ui.settingsList = tview.NewList().ShowSecondaryText(true)
	ui.settingsList.SetBorder(true).SetTitle(" Settings ")
	for _, info := range AllSettingFields {
		ui.settingsList.AddItem(info.DisplayName, "", 0, nil)
	}

	ui.settingsHelp = tview.NewTextView().SetDynamicColors(true)

	ui.settingsTabWidgets = append(ui.settingsTabWidgets, ui.settingsList.Box)

	ui.settingsFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(instructionsText, 1, 0, false).
		AddItem(ui.settingsList, 0, 1, true).
		AddItem(ui.settingsHelp, 1, 0, false)
}

// SetPresetList populates the preset selection list
func (ui *CursesUIViewImpl) SetPresetList(presets []Preset) {
	ui.presets = presets
	ui.presetList.Clear()

	for _, preset := range presets {
		ui.presetList.AddItem(preset.Name, preset.Config.String(), 0, nil)
	}

	if len(presets) > 0 {
		ui.updatePresetDetailsDisplay(0)
	}
}

func (ui *CursesUIViewImpl) updatePresetDetailsDisplay(index int) {
	if ui.presetDetailsPanel == nil {
		return
	}
	if index < 0 || index >= len(ui.presets) {
		ui.presetDetailsPanel.SetText("\n\n  [yellow]Presets[white]\n\n  Select a preset from the list to view details.\n")
		return
	}
	ui.presetDetailsPanel.SetText(formatPresetDetails(ui.presets[index]))
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}

	ui.currentMode = mode

	switch mode {
	case UIModeTimer:
		ui.pages.SwitchToPage(pageTimer)
	case UIModePresets:
		ui.pages.SwitchToPage(pagePresets)
	case UIModeSettings:
		ui.pages.SwitchToPage(pageSettings)
	}

	ui.setFocusForCurrentMode()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

// setFocusForCurrentMode sets focus to the first widget in the current mode
func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	if widgets := ui.getTabWidgetsForCurrentMode(); len(widgets) > 0 {
		ui.app.SetFocus(widgets[0])
	}
}

// getTabWidgetsForCurrentMode returns the tab widgets for the current mode
func (ui *CursesUIViewImpl) getTabWidgetsForCurrentMode() []*tview.Box {
	switch ui.currentMode {
	case UIModeTimer:
		return ui.timerTabWidgets
	case UIModePresets:
		return ui.presetsTabWidgets
	case UIModeSettings:
		return ui.settingsTabWidgets
	default:
		return nil
	}
}

func (ui *CursesUIViewImpl) selectedSetting() SettingField {
	index := ui.settingsList.GetCurrentItem()
	if index < 0 || index >= len(AllSettingFields) {
		return SettingWork
	}
	return AllSettingFields[index].Field
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune {
			if mode, ok := GetUIModeByKey(event.Rune()); ok {
				// Delegate to controller - it will update the model, which will notify us
				controller.OnModeChange(mode)
				return nil
			}
		}

		// Tab to switch focus between widgets in current mode
		if event.Key() == tcell.KeyTab {
			widgets := ui.getTabWidgetsForCurrentMode()
			widgetCount := len(widgets)
			for idx := 0; idx < widgetCount; idx++ {
				if widgets[idx].HasFocus() {
					ui.app.SetFocus(widgets[(idx+1)%widgetCount])
					break
				}
			}
			return nil
		}

		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		// Run controls work in every mode
		if event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case ' ':
				controller.ToggleWorkout()
				return nil
			case 'r', 'R':
				controller.ResetWorkout()
				return nil
			case 'm', 'M':
				controller.ToggleMusic()
				return nil
			}
		}

		if ui.currentMode == UIModeSettings {
			switch {
			case event.Key() == tcell.KeyRight,
				event.Key() == tcell.KeyRune && (event.Rune() == '+' || event.Rune() == '='):
				controller.AdjustSetting(ui.selectedSetting(), 1)
				return nil
			case event.Key() == tcell.KeyLeft,
				event.Key() == tcell.KeyRune && event.Rune() == '-':
				controller.AdjustSetting(ui.selectedSetting(), -1)
				return nil
			}
		}

		return event
	})
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// UpdateSnapshot refreshes the timer panel and the settings values
func (ui *CursesUIViewImpl) UpdateSnapshot(snapshot Snapshot) {
	if snapshot.Config.TotalSets == 0 {
		// Nothing published yet
		return
	}
	ui.timerPanel.SetText(formatTimerText(snapshot))
	ui.timerPanel.SetTitle(fmt.Sprintf(" Tabata - %s ", snapshot.State.Phase))

	for i, info := range AllSettingFields {
		ui.settingsList.SetItemText(i, info.DisplayName, settingText(info, snapshot.Config))
	}
	ui.settingsHelp.SetText(formatSettingsHelp(snapshot))
}

// UpdateBeat shows the latest cue or loop step in the beat panel
func (ui *CursesUIViewImpl) UpdateBeat(event audio.CueEvent) {
	ui.beatPanel.SetText(beatText(event))
}

// QueueUpdate runs f on the tview event loop and redraws
func (ui *CursesUIViewImpl) QueueUpdate(f func()) {
	// QueueUpdateDraw waits for the event loop, which never comes back after Stop
	done := make(chan struct{})
	safego.Go(ui.logger, "CursesUIView update", func() {
		ui.app.QueueUpdateDraw(f)
		close(done)
	})
	select {
	case <-done:
	case <-ui.stopped:
	}
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	defer close(ui.stopped)
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}

var _ UIViewImpl = (*CursesUIViewImpl)(nil)
