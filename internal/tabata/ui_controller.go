package tabata

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/lowaak/tabata-timer/internal/safego"
)

// UIController turns UI events into Controller commands. Commands that may wait for audio
// activation run off the UI goroutine; rejected commands are only logged because the
// views already hide actions that do not apply.
type UIController struct {
	model      *UIModel
	controller *Controller
	logger     *log.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(model *UIModel, controller *Controller, logger *log.Logger) *UIController {
	if model == nil {
		panic("UIController: model cannot be nil")
	}
	if controller == nil {
		panic("UIController: controller cannot be nil")
	}
	if logger == nil {
		panic("UIController: logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &UIController{
		model:      model,
		controller: controller,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Shutdown cancels pending commands and waits for them to return.
func (c *UIController) Shutdown() {
	c.cancel()
	c.wg.Wait()
}

// OnEscapeKey handles when the Escape key is pressed
func (c *UIController) OnEscapeKey() {
	c.model.RequestCloseApplication()
}

// OnModeChange handles when the user requests a mode change
func (c *UIController) OnModeChange(mode UIMode) {
	if info, ok := GetUIModeInfo(mode); ok {
		c.logger.Printf("UI: Switching to %s mode", info.DisplayName)
	}
	c.model.SetMode(mode)
}

// ToggleWorkout starts a run from IDLE or COMPLETE and pauses or resumes one in progress.
func (c *UIController) ToggleWorkout() {
	if c.model.GetSnapshot().State.Phase.Active() {
		c.dispatch("pause/resume", c.controller.ToggleRunning)
		return
	}
	c.dispatch("start", c.controller.Start)
}

// ResetWorkout returns the timer to IDLE.
func (c *UIController) ResetWorkout() {
	c.report("reset", c.controller.Reset())
}

// ToggleMusic flips the background music preference.
func (c *UIController) ToggleMusic() {
	c.dispatch("music", c.controller.ToggleMusic)
}

// OnPresetSelected applies the preset at index in the controller's preset list.
func (c *UIController) OnPresetSelected(index int) {
	presets := c.controller.Presets()
	if index < 0 || index >= len(presets) {
		c.logger.Printf("UI: Invalid preset index: %d", index)
		return
	}
	c.report("preset", c.controller.ApplyPreset(presets[index].Name))
}

// AdjustSetting changes field by steps times its step size, clamped to the valid range.
func (c *UIController) AdjustSetting(field SettingField, steps int) {
	info := AllSettingFields[field]
	current := field.Value(c.controller.Snapshot().Config)
	lo, hi := field.Limits()
	value := min(max(current+steps*info.Step, lo), hi)
	if value == current {
		return
	}
	c.report("settings", c.controller.SetConfig(field.Patch(value)))
}

// dispatch runs cmd on its own goroutine so audio activation never stalls the UI.
func (c *UIController) dispatch(name string, cmd func(context.Context) error) {
	safego.GoWG(&c.wg, c.logger, "UI "+name, func() {
		c.report(name, cmd(c.ctx))
	})
}

func (c *UIController) report(name string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrConfigLocked):
		c.logger.Printf("UI: Settings are locked during a workout - press R to reset first")
	default:
		c.logger.Printf("UI: %s failed: %v", name, err)
	}
}
