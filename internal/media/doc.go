// Package media wraps the ffmpeg and ffprobe binaries that subsonar treats
// as external collaborators: subtitle extraction, silence and volume
// analysis, stream probing, and still/clip rendering. Everything here shells
// out; no media decoding happens in-process.
package media
