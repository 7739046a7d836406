// Package index manages the persistent full-text index over subtitle events
// backed by SQLite FTS5.
//
// An index is a directory holding the database, a JSON sidecar recording the
// path-storage policy, the analysis cache, and a lock file serializing
// writers across processes. All events extracted from one file become
// visible atomically; across files in a recursive add there is no isolation.
package index
