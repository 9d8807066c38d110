// Package media describes the media sources a canvas can play back and the frame information probed from them.
package media

import (
	"fmt"
	"math"
	"path/filepath"
)

// Ref points at a media source on the application filesystem.
type Ref struct {
	Path string `json:"path"`
}

// NewRef cleans path into a reference.
func NewRef(path string) Ref {
	return Ref{Path: filepath.Clean(path)}
}

func (r Ref) String() string {
	return r.Path
}

// SidecarPath is where probe output for the media is looked up.
func (r Ref) SidecarPath() string {
	return r.Path + ".json"
}

// Info is the frame layout of a media source.
type Info struct {
	FrameRate  float64 `json:"frame_rate"`
	Frames     int     `json:"frames"`
	Duration   float64 `json:"duration"`
	Overridden bool    `json:"overridden"`
}

// Valid reports whether the info describes at least one frame at a positive rate.
func (i Info) Valid() bool {
	return i.FrameRate > 0 && i.Frames > 0
}

// RoundedFrameRate is the frame rate as a whole number, as profiles use it.
func (i Info) RoundedFrameRate() int {
	return int(math.Round(i.FrameRate))
}

func (i Info) String() string {
	s := fmt.Sprintf("%d frames, %.2f s, %.2f fps", i.Frames, i.Duration, i.FrameRate)
	if i.Overridden {
		s += " (fps recomputed from duration)"
	}
	return s
}

// Reconcile fixes a declared frame rate that disagrees with the media length.
// When the whole-number difference between the declared rate and frames/duration exceeds tolerance,
// the rate is replaced by frames/duration so that playback covers the full duration.
func Reconcile(info Info, tolerance float64) Info {
	if info.Frames <= 0 || info.Duration <= 0 {
		info.Overridden = false
		return info
	}

	measured := float64(info.Frames) / info.Duration
	if math.Trunc(math.Abs(info.FrameRate-measured)) > tolerance {
		info.FrameRate = measured
		info.Overridden = true
	} else {
		info.Overridden = false
	}

	return info
}
