// Package analysiscache persists the results of expensive per-file media
// analysis so repeated queries never redo the work.
//
// Entries are keyed by a structured (path, kind) record rather than a flat
// string so callers never construct collidable filenames by hand. The key is
// serialized to deterministic JSON and hashed with SHA-1 to produce a
// fixed-length, filesystem-safe entry name; values are stored as
// gzip-compressed JSON. The cache performs no expiration or invalidation
// beyond explicit Pop; staleness after the underlying media file changes is
// an accepted limitation.
package analysiscache
