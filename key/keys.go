// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Engine Behaviour - these keys tune the playback synchronization engine.
const (
	EngineScrubWindowMs = "engine.scrub_window_ms"
	EngineFrameRate     = "engine.frame_rate"
	EngineChecked       = "engine.checked"
)

// Media Handling - these keys govern probing and frame-rate reconciliation of media sources.
const (
	MediaFpsTolerance    = "media.fps_tolerance"
	MediaProbeCacheHours = "media.probe_cache_hours"
)

// Audio Output - these keys configure the reference audio backend.
const (
	AudioSampleRate = "audio.sample_rate"
	AudioTapSize    = "audio.tap_size"
)

// Terminal Preview - these keys configure the interactive preview surface.
const (
	PreviewDefaultMedia = "preview.default_media"
	PreviewShowHelp     = "preview.show_help"
	PreviewFrames       = "preview.frames"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
