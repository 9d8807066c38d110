package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/color"
	"github.com/playsync/playsync/icon"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/style"
	"github.com/playsync/playsync/util"
)

const meterWidth = 20

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (m *model) View() string {
	lines := []string{
		style.Title("Preview"),
		"",
		m.viewTransport(),
		"",
		m.progress.ViewAs(m.position()),
		"",
		m.viewAudio(),
		"",
		wrap.String(style.Faint(m.viewStats()), max(m.width-4, 20)),
	}

	if m.err != nil {
		lines = append(lines, "", style.Fg(color.Red)(m.err.Error()))
	}

	if m.showHelp {
		lines = append(lines, "", m.help.View(m.keys))
	}

	return paddingStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) viewTransport() string {
	state := m.canvas.PlaybackState()

	symbol := icon.Get(icon.Pause)
	if state == canvas.Playing {
		symbol = icon.Get(icon.Play)
	}

	document := m.document()
	fps := m.engine.Profile().FrameRate()
	frame := fmt.Sprintf("%s  frame %d/%d", util.Timecode(m.shown.Frame, fps), m.shown.Frame, document.End)
	if m.shown.Finalize {
		frame = style.Bold(frame)
	}

	return strings.Join([]string{
		style.Fg(color.Push)(symbol + " " + state.String()),
		frame,
		fmt.Sprintf("%d fps", fps),
		style.Mode(m.stats.Mode),
	}, "  ")
}

func (m *model) viewAudio() string {
	symbol := icon.Get(icon.Volume)
	if m.stats.Mute {
		symbol = icon.Get(icon.Mute)
	}

	filled := int(util.Clamp(m.level, 0, 1) * meterWidth)
	meter := style.Fg(color.Meter)(strings.Repeat("▮", filled)) + style.Faint(strings.Repeat("▯", meterWidth-filled))

	return fmt.Sprintf("%s %3.0f%%  %s", symbol, m.canvas.Volume()*100, meter)
}

func (m *model) viewStats() string {
	s := m.stats
	line := fmt.Sprintf(
		"push %s · pull %s · %s · %s · %d shown by pull · %d coalesced",
		s.PushState,
		s.PullState,
		util.Quantify(s.Transitions, "transition", "transitions"),
		util.Quantify(s.AudioPushes, "audio push", "audio pushes"),
		s.PullShown,
		s.Bridge.Coalesced,
	)

	if s.Media != nil {
		line += " · " + viewMedia(*s.Media)
	}
	return line
}

// viewMedia describes probed media, flagging a frame rate recomputed from its duration.
func viewMedia(info media.Info) string {
	text := fmt.Sprintf("%d frames at %.2f fps", info.Frames, info.FrameRate)
	if info.Overridden {
		text += " " + style.Tag(color.Black, color.Yellow)("fps recomputed")
	}
	return text
}

func (m *model) position() float64 {
	document := m.document()
	if document.Len() <= 1 {
		return 0
	}
	return util.Clamp(float64(m.shown.Frame-document.Start)/float64(document.Len()-1), 0, 1)
}
