// Package preflight provides readiness checks for the filesystem paths and
// external binaries the tool depends on.
//
// Mutating commands call RunAll before touching the index so a doomed run
// fails up front; the deps command uses CheckSystemDeps to display binary
// availability.
package preflight
