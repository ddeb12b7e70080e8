// Package output formats dump run reports for display or machine consumption.
//
// Two formats are supported:
//   - text: human-readable summary on stdout (default)
//   - json: full structured report including every written patch
//
// Build a [Report] with [NewReport], then use [GetWriter] to obtain a
// [Writer] for a format string.
package output
