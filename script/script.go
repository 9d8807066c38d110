// Package script runs Lua playback scenarios against an engine on a virtual clock.
//
// A scenario drives in-memory canvases the way an editor would (play, pause, scrub, mute,
// switch documents) and produces a Report of everything the engine showed and pushed.
package script

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/consumer"
	"github.com/playsync/playsync/engine"
	"github.com/playsync/playsync/key"
	"github.com/playsync/playsync/log"
	"github.com/playsync/playsync/util"
	"github.com/spf13/viper"
	lua "github.com/yuin/gopher-lua"
)

// MainCanvas is the canvas attached before a scenario starts.
const MainCanvas = "main"

// Session binds a Lua state to an engine and a set of named in-memory canvases.
type Session struct {
	name   string
	clock  *clock.Mock
	start  time.Time
	tap    *consumer.Tap
	engine *engine.Engine

	canvases map[string]*canvas.Memory
	order    []string
	active   string
	steps    []Step
}

// NewSession creates an engine over a virtual clock with the main canvas attached.
func NewSession(name string) (*Session, error) {
	mock := clock.NewMock()
	tap := consumer.NewTap(viper.GetInt(key.AudioTapSize))

	opts := engine.FromConfig(tap)
	opts.Clock = mock
	opts.Backend = consumer.NewMixer(tap, mock)

	e, err := engine.New(opts)
	if err != nil {
		return nil, err
	}

	s := &Session{
		name:     name,
		clock:    mock,
		start:    mock.Now(),
		tap:      tap,
		engine:   e,
		canvases: make(map[string]*canvas.Memory),
	}

	if err := s.switchTo(MainCanvas); err != nil {
		_ = e.Close()
		return nil, err
	}

	return s, nil
}

// Engine is the engine driven by the session.
func (s *Session) Engine() *engine.Engine {
	return s.engine
}

// Canvas returns the named canvas, if it was created.
func (s *Session) Canvas(name string) (*canvas.Memory, bool) {
	c, ok := s.canvases[name]
	return c, ok
}

// Close releases the engine.
func (s *Session) Close() error {
	return s.engine.Close()
}

func (s *Session) current() *canvas.Memory {
	return s.canvases[s.active]
}

func (s *Session) switchTo(name string) error {
	c, ok := s.canvases[name]
	if !ok {
		frames := max(viper.GetInt(key.PreviewFrames), 1)
		c = canvas.NewMemory(s.engine.Profile().FrameRate(), canvas.Range{Start: 0, End: frames - 1})
		s.canvases[name] = c
		s.order = append(s.order, name)
	}

	if err := s.engine.SetCanvas(c); err != nil {
		return err
	}

	s.active = name
	return nil
}

// advance moves virtual time forward one frame at a time, letting the engine catch up after each.
func (s *Session) advance(d time.Duration) {
	step := s.engine.Profile().FrameDuration()
	for d > 0 {
		dt := min(step, d)
		s.clock.Add(dt)
		s.engine.Sync()
		d -= dt
	}
}

func (s *Session) elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}

func (s *Session) record(call string, err error) {
	step := Step{
		At:    s.elapsed().Milliseconds(),
		Call:  call,
		Mode:  s.engine.Mode().String(),
		Frame: s.current().DisplayedFrame(),
	}
	if err != nil {
		step.Error = err.Error()
	}
	s.steps = append(s.steps, step)
	log.Debugf("script %s: %s at %dms (%s)", s.name, call, step.At, step.Mode)
}

// Report summarizes the session so far.
func (s *Session) Report() *Report {
	s.engine.Sync()

	shown := make(map[string][]canvas.Shown, len(s.order))
	for _, name := range s.order {
		shown[name] = s.canvases[name].Shown()
	}

	return &Report{
		Script:   s.name,
		Duration: s.elapsed().Milliseconds(),
		Steps:    s.steps,
		Shown:    shown,
		Samples:  s.tap.Written(),
		Stats:    s.engine.Stats(),
	}
}

// Exec runs Lua source inside the session.
func (s *Session) Exec(name string, source []byte) error {
	proto, err := compile(name, source)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}

	L := lua.NewState()
	defer L.Close()

	s.register(L)

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}

	return nil
}

// Run executes the scenario file at path and returns its report.
func Run(path string) (*Report, error) {
	source, err := readScript(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	return RunSource(util.FileStem(path), source)
}

// RunSource executes a scenario from memory and returns its report.
func RunSource(name string, source []byte) (*Report, error) {
	s, err := NewSession(name)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if err := s.Exec(name, source); err != nil {
		return nil, err
	}

	return s.Report(), nil
}
