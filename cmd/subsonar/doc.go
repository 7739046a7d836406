// Command subsonar indexes subtitle text extracted from video files, searches
// the indexed dialogue, and renders stills or silence-aligned clips of the
// matches.
package main
