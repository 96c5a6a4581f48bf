package tabata

import (
	"fmt"
	"strings"

	"github.com/lowaak/tabata-timer/internal/audio"
)

// phaseColor returns the tview color name used for a phase.
func phaseColor(p Phase) string {
	switch p {
	case PhaseWork:
		return "red"
	case PhaseRest:
		return "green"
	case PhasePrepare:
		return "yellow"
	case PhaseComplete:
		return "blue"
	default:
		return "gray"
	}
}

// bigGlyphs are 5-row block renderings of the characters that appear in a clock.
var bigGlyphs = map[rune][5]string{
	'0': {"███", "█ █", "█ █", "█ █", "███"},
	'1': {" █ ", "██ ", " █ ", " █ ", "███"},
	'2': {"███", "  █", "███", "█  ", "███"},
	'3': {"███", "  █", "███", "  █", "███"},
	'4': {"█ █", "█ █", "███", "  █", "  █"},
	'5': {"███", "█  ", "███", "  █", "███"},
	'6': {"███", "█  ", "███", "█ █", "███"},
	'7': {"███", "  █", "  █", "  █", "  █"},
	'8': {"███", "█ █", "███", "█ █", "███"},
	'9': {"███", "█ █", "███", "  █", "███"},
	':': {"   ", " ▪ ", "   ", " ▪ ", "   "},
}

// bigClock renders text as five lines of block glyphs. Unknown runes render blank.
func bigClock(text string) []string {
	var rows [5]strings.Builder
	for i, r := range text {
		glyph, ok := bigGlyphs[r]
		if !ok {
			glyph = [5]string{"   ", "   ", "   ", "   ", "   "}
		}
		for row := range rows {
			if i > 0 {
				rows[row].WriteString(" ")
			}
			rows[row].WriteString(glyph[row])
		}
	}
	lines := make([]string, len(rows))
	for i := range rows {
		lines[i] = rows[i].String()
	}
	return lines
}

// roundsDone is the number of fully finished rounds in s.
func roundsDone(s State, totalSets int) int {
	switch s.Phase {
	case PhaseComplete:
		return totalSets
	case PhaseRest:
		return s.CurrentSet
	case PhaseWork:
		return s.CurrentSet - 1
	default:
		return 0
	}
}

// progressDots draws one dot per round: filled when done, ringed for the round in progress.
func progressDots(s State, totalSets int) string {
	done := roundsDone(s, totalSets)
	dots := make([]string, totalSets)
	for i := range dots {
		switch {
		case i < done:
			dots[i] = "●"
		case i == done && s.Phase == PhaseWork:
			dots[i] = "◉"
		default:
			dots[i] = "○"
		}
	}
	return strings.Join(dots, " ")
}

// formatTimerText renders the timer panel for a snapshot, using tview color tags.
func formatTimerText(s Snapshot) string {
	color := phaseColor(s.State.Phase)
	var b strings.Builder

	b.WriteString("\n")
	fmt.Fprintf(&b, "  [%s::b]%s[-::-]", color, s.State.Phase.Label())
	if s.State.Phase.Active() && !s.State.IsRunning {
		b.WriteString("  [gray](PAUSED)[-]")
	}
	b.WriteString("\n\n")

	for _, line := range bigClock(s.Clock()) {
		fmt.Fprintf(&b, "  [%s]%s[-]\n", color, line)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "  [gray]Round:[white] %d / %d\n", s.State.CurrentSet, s.Config.TotalSets)
	fmt.Fprintf(&b, "  %s\n\n", progressDots(s.State, s.Config.TotalSets))
	fmt.Fprintf(&b, "  [gray]Workout:[white] %s\n", s.Config)
	fmt.Fprintf(&b, "  [gray]Music:[white]   %s\n", onOff(s.MusicEnabled))

	b.WriteString("\n  [gray]─────────────────────────[white]\n")
	switch {
	case s.State.Phase.Active() && s.State.IsRunning:
		b.WriteString("  [yellow]Space[white] Pause  |  [yellow]R[white] Reset  |  [yellow]M[white] Music\n")
	case s.State.Phase.Active():
		b.WriteString("  [yellow]Space[white] Resume  |  [yellow]R[white] Reset  |  [yellow]M[white] Music\n")
	default:
		b.WriteString("  [yellow]Space[white] Start  |  [yellow]M[white] Music\n")
	}
	return b.String()
}

// formatTotal renders a number of seconds as "4m 0s" or "45s".
func formatTotal(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// formatPresetDetails renders the preset details panel.
func formatPresetDetails(p Preset) string {
	text := "\n"
	text += fmt.Sprintf("  [yellow]%s[white]\n\n", p.Name)
	if p.Description != "" {
		text += fmt.Sprintf("  %s\n\n", p.Description)
	}
	text += fmt.Sprintf("  [gray]Work:[white]    %ds\n", p.Config.WorkDuration)
	text += fmt.Sprintf("  [gray]Rest:[white]    %ds\n", p.Config.RestDuration)
	text += fmt.Sprintf("  [gray]Rounds:[white]  %d\n", p.Config.TotalSets)
	text += fmt.Sprintf("  [gray]Prepare:[white] %ds\n\n", p.Config.PrepareDuration)
	text += fmt.Sprintf("  [gray]Total:[white]   %s\n", formatTotal(p.Config.TotalDuration()))
	text += "\n  [green]Press Enter to load this preset[white]\n"
	return text
}

// settingText is the secondary line of a settings list row.
func settingText(info SettingFieldInfo, c Config) string {
	return fmt.Sprintf("%d%s", info.Field.Value(c), info.Unit)
}

// formatSettingsHelp renders the hint under the settings list.
func formatSettingsHelp(s Snapshot) string {
	if s.State.Phase.Active() {
		return " [red]Locked while a workout runs.[white] Press [yellow]R[white] to reset."
	}
	return fmt.Sprintf(" [yellow]←/→[white] or [yellow]-/+[white] Adjust  |  Total %s", formatTotal(s.Config.TotalDuration()))
}

// beatText renders the beat indicator for a cue or loop step.
func beatText(event audio.CueEvent) string {
	switch event.Kind {
	case audio.CueCountdown:
		return "[yellow]● tick[-]"
	case audio.CueTransition:
		return "[red]●● buzz[-]"
	case audio.CueCompletion:
		return "[blue]♪♪♪ done[-]"
	default:
		if event.Step%4 == 0 {
			return fmt.Sprintf("[white]♪[-] [gray]%s %02d[-]", event.Tempo, event.Step)
		}
		return fmt.Sprintf("[gray]· %s %02d[-]", event.Tempo, event.Step)
	}
}
