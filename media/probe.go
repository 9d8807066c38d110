package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrNoVideoStream is returned when probe output lists no video stream.
var ErrNoVideoStream = errors.New("no video stream in probe output")

type probeStream struct {
	CodecType  string `json:"codec_type"`
	RFrameRate string `json:"r_frame_rate"`
	NbFrames   string `json:"nb_frames"`
	Duration   string `json:"duration"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseProbe reads ffprobe JSON output (-show_streams -show_format) and extracts the frame layout
// of the first video stream. Missing fields are derived from the others where possible.
func ParseProbe(r io.Reader) (Info, error) {
	var out probeOutput
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return Info{}, fmt.Errorf("decode probe output: %w", err)
	}

	var stream *probeStream
	for i := range out.Streams {
		if out.Streams[i].CodecType == "video" {
			stream = &out.Streams[i]
			break
		}
	}
	if stream == nil {
		return Info{}, ErrNoVideoStream
	}

	var info Info
	info.FrameRate = parseRate(stream.RFrameRate)
	info.Frames, _ = strconv.Atoi(stream.NbFrames)

	// VP8/VP9 streams carry no duration of their own.
	switch {
	case stream.Duration != "":
		info.Duration, _ = strconv.ParseFloat(stream.Duration, 64)
	case out.Format.Duration != "":
		info.Duration, _ = strconv.ParseFloat(out.Format.Duration, 64)
	case info.FrameRate > 0:
		info.Duration = float64(info.Frames) / info.FrameRate
	}

	if info.Frames == 0 && info.FrameRate > 0 && info.Duration > 0 {
		info.Frames = int(math.Ceil(info.FrameRate * info.Duration))
	}

	if info.Frames == 0 && info.Duration == 0 {
		return info, fmt.Errorf("probe output has neither frame count nor duration")
	}

	return info, nil
}

// parseRate turns "num/den" into a whole frames-per-second value, rounded up.
func parseRate(raw string) float64 {
	num, den, found := strings.Cut(raw, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return math.Ceil(n)
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return math.Ceil(n / d)
}
