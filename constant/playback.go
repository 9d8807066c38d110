package constant

// ScrubAudioSeconds is the length of audio fed to the push consumer for a single scrub position.
const ScrubAudioSeconds = 0.25

// DefaultFrameRate is the profile frame rate used before any canvas reports its own.
const DefaultFrameRate = 24

// DefaultSampleRate is the sample rate of the reference audio backend.
const DefaultSampleRate = 44100

// Logo is the banner printed above the root command help.
const Logo = `
 ▄▄▄  ▗▖    ▗▄▖ ▗▖  ▗▖ ▗▄▄▖▗▖  ▗▖▗▖  ▗▖ ▗▄▄▖
 █  █ ▐▌   ▐▌ ▐▌ ▝▚▞▘ ▐▌    ▝▚▞▘ ▐▛▚▖▐▌▐▌
 █▀▀  ▐▌   ▐▛▀▜▌  ▐▌   ▝▀▚▖  ▐▌  ▐▌ ▝▜▌▐▌
 █    ▐▙▄▄▖▐▌ ▐▌  ▐▌  ▗▄▄▞▘  ▐▌  ▐▌  ▐▌▝▚▄▄▖`
