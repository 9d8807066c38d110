package script

import (
	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/engine"
)

// Step is one scenario call.
type Step struct {
	// At is the virtual time of the call, in milliseconds since the scenario started.
	At    int64  `json:"at" jsonschema:"description=Virtual milliseconds since the scenario started"`
	Call  string `json:"call"`
	Mode  string `json:"mode" jsonschema:"enum=push,enum=pull"`
	Frame int    `json:"frame" jsonschema:"description=Displayed frame of the active canvas after the call"`
	Error string `json:"error,omitempty"`
}

// Report summarizes a scenario run.
type Report struct {
	Script   string                    `json:"script"`
	Duration int64                     `json:"duration_ms"`
	Steps    []Step                    `json:"steps"`
	Shown    map[string][]canvas.Shown `json:"shown"`
	Samples  int                       `json:"audio_samples" jsonschema:"description=Audio samples written by both consumers"`
	Stats    engine.Stats              `json:"stats"`
}
