package script

import (
	"fmt"
	"time"

	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/engine"
	"github.com/playsync/playsync/media"
	"github.com/samber/mo"
	lua "github.com/yuin/gopher-lua"
)

func (s *Session) register(L *lua.LState) {
	functions := map[string]lua.LGFunction{
		"play":   s.transport(canvas.Playing, "play"),
		"pause":  s.transport(canvas.Paused, "pause"),
		"stop":   s.transport(canvas.Stopped, "stop"),
		"seek":   s.luaSeek,
		"mute":   s.luaMute,
		"volume": s.luaVolume,
		"fps":    s.luaFps,
		"range":  s.luaRange,
		"media":  s.luaMedia,
		"sleep":  s.luaSleep,
		"frame":  s.luaFrame,
		"mode":   s.luaMode,
		"switch": s.luaSwitch,
	}

	for name, fn := range functions {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

// raise records a failed call and turns it into a Lua error.
func (s *Session) raise(L *lua.LState, call string, err error) int {
	s.record(call, err)
	L.RaiseError("%s: %s", call, err)
	return 0
}

func (s *Session) transport(state canvas.PlaybackState, call string) lua.LGFunction {
	return func(L *lua.LState) int {
		s.current().SetPlaybackState(state)
		s.engine.Sync()
		s.record(call+"()", nil)
		return 0
	}
}

func (s *Session) luaSeek(L *lua.LState) int {
	frame := L.CheckInt(1)
	audio := L.OptBool(2, false)
	finalize := L.OptBool(3, false)

	var flags engine.SeekFlags
	if audio {
		flags |= engine.SeekPushAudio
	}
	if finalize {
		flags |= engine.SeekFinalize
	}

	call := fmt.Sprintf("seek(%d, %t, %t)", frame, audio, finalize)
	if err := s.engine.Seek(frame, flags); err != nil {
		return s.raise(L, call, err)
	}

	s.record(call, nil)
	return 0
}

func (s *Session) luaMute(L *lua.LState) int {
	mute := L.OptBool(1, true)

	call := fmt.Sprintf("mute(%t)", mute)
	if err := s.engine.SetMute(mute); err != nil {
		return s.raise(L, call, err)
	}

	s.record(call, nil)
	return 0
}

func (s *Session) luaVolume(L *lua.LState) int {
	volume := float64(L.CheckNumber(1))
	if volume < 0 || volume > 1 {
		L.ArgError(1, "volume must be between 0 and 1")
		return 0
	}

	s.current().SetVolume(volume)
	s.engine.Sync()
	s.record(fmt.Sprintf("volume(%.2f)", volume), nil)
	return 0
}

func (s *Session) luaFps(L *lua.LState) int {
	fps := L.CheckInt(1)
	if fps <= 0 {
		L.ArgError(1, "frame rate must be positive")
		return 0
	}

	s.current().SetFrameRate(fps)
	s.engine.Sync()
	s.record(fmt.Sprintf("fps(%d)", fps), nil)
	return 0
}

func (s *Session) luaRange(L *lua.LState) int {
	r := canvas.Range{Start: L.CheckInt(1), End: L.CheckInt(2)}
	if r.Len() == 0 {
		L.ArgError(2, "range end must not precede its start")
		return 0
	}

	s.current().SetActiveRange(r)
	s.engine.Sync()
	s.record(fmt.Sprintf("range(%d, %d)", r.Start, r.End), nil)
	return 0
}

func (s *Session) luaMedia(L *lua.LState) int {
	path := L.OptString(1, "")

	ref := mo.None[media.Ref]()
	if path != "" {
		ref = mo.Some(media.NewRef(path))
	}

	s.current().SetMedia(ref)
	s.engine.Sync()
	s.record(fmt.Sprintf("media(%q)", path), nil)
	return 0
}

func (s *Session) luaSleep(L *lua.LState) int {
	ms := L.CheckInt(1)
	if ms < 0 {
		L.ArgError(1, "sleep duration must not be negative")
		return 0
	}

	s.advance(time.Duration(ms) * time.Millisecond)
	s.record(fmt.Sprintf("sleep(%d)", ms), nil)
	return 0
}

func (s *Session) luaFrame(L *lua.LState) int {
	L.Push(lua.LNumber(s.current().DisplayedFrame()))
	return 1
}

func (s *Session) luaMode(L *lua.LState) int {
	L.Push(lua.LString(s.engine.Mode().String()))
	return 1
}

func (s *Session) luaSwitch(L *lua.LState) int {
	name := L.CheckString(1)

	call := fmt.Sprintf("switch(%q)", name)
	if err := s.switchTo(name); err != nil {
		return s.raise(L, call, err)
	}

	s.record(call, nil)
	return 0
}
