package preview

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/consumer"
	"github.com/playsync/playsync/engine"
	"github.com/playsync/playsync/util"
)

const (
	refreshInterval = 100 * time.Millisecond
	volumeStep      = 0.1
	levelWindow     = 1024
)

type (
	frameMsg canvas.Shown
	tickMsg  time.Time
)

// model is the display surface of a single in-memory canvas.
type model struct {
	engine *engine.Engine
	canvas *canvas.Memory
	tap    *consumer.Tap
	frames chan canvas.Shown

	keys     *keymap
	help     help.Model
	progress progress.Model
	showHelp bool

	shown canvas.Shown
	stats engine.Stats
	level float64
	width int
	err   error
}

func newModel(e *engine.Engine, c *canvas.Memory, tap *consumer.Tap, showHelp bool) *model {
	m := &model{
		engine:   e,
		canvas:   c,
		tap:      tap,
		frames:   make(chan canvas.Shown, 1),
		keys:     newKeymap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
		showHelp: showHelp,
		width:    80,
	}

	if width, _, err := util.TerminalSize(); err == nil && width > 0 {
		m.resize(width)
	}

	c.OnShow(m.deliver)
	return m
}

// deliver runs on the engine loop. It keeps only the newest frame so the loop never waits on the UI.
func (m *model) deliver(s canvas.Shown) {
	for {
		select {
		case m.frames <- s:
			return
		default:
			select {
			case <-m.frames:
			default:
			}
		}
	}
}

func (m *model) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		return frameMsg(<-m.frames)
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) resize(width int) {
	m.width = width
	m.help.Width = width
	m.progress.Width = max(width-4, 10)
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.waitForFrame(), tick())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width)
	case frameMsg:
		m.shown = canvas.Shown(msg)
		return m, m.waitForFrame()
	case tickMsg:
		m.stats = m.engine.Stats()
		m.level = m.tap.Level(levelWindow)
		return m, tick()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.playPause):
		m.togglePlayback()
	case key.Matches(msg, m.keys.prev):
		m.step(-1, engine.SeekPushAudio)
	case key.Matches(msg, m.keys.next):
		m.step(1, engine.SeekPushAudio)
	case key.Matches(msg, m.keys.jumpPrev):
		m.step(-m.engine.Profile().FrameRate(), engine.SeekPushAudio|engine.SeekFinalize)
	case key.Matches(msg, m.keys.jumpNext):
		m.step(m.engine.Profile().FrameRate(), engine.SeekPushAudio|engine.SeekFinalize)
	case key.Matches(msg, m.keys.mute):
		m.err = m.engine.SetMute(!m.engine.IsMute())
	case key.Matches(msg, m.keys.louder):
		m.canvas.SetVolume(util.Clamp(m.canvas.Volume()+volumeStep, 0, 1))
	case key.Matches(msg, m.keys.quieter):
		m.canvas.SetVolume(util.Clamp(m.canvas.Volume()-volumeStep, 0, 1))
	case key.Matches(msg, m.keys.showHelp):
		m.showHelp = !m.showHelp
	}

	m.stats = m.engine.Stats()
	return nil
}

func (m *model) togglePlayback() {
	if m.canvas.PlaybackState() == canvas.Playing {
		m.canvas.SetPlaybackState(canvas.Paused)
	} else {
		m.canvas.SetPlaybackState(canvas.Playing)
	}
}

// step seeks delta frames from the displayed frame, staying inside the document.
func (m *model) step(delta int, flags engine.SeekFlags) {
	document := m.document()
	frame := util.Clamp(m.canvas.DisplayedFrame()+delta, document.Start, document.End)
	m.err = m.engine.Seek(frame, flags)
}

func (m *model) document() canvas.Range {
	anim, ok := m.canvas.Animation().Get()
	if !ok {
		return canvas.Range{}
	}
	return anim.DocumentRange()
}
