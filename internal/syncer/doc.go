// Package syncer implements the offline puzzle cache builder.
//
// A run walks a date window anchored to "today" in a configured
// timezone and, for each date, either verifies an already-cached file
// or fetches the document from the remote source. Per-date failures are
// data, not control flow: a missing or unpublished date becomes a
// failed index entry and the loop continues. Only setup failures
// (cache directory cannot be created, config invalid) abort a run.
//
// Two manifests are written at the end of every run:
//
//   - index.json records every ATTEMPTED date of this window, tagged
//     ok or failed with the failure kind preserved.
//   - available-dates.json records every VERIFIED-PRESENT date, derived
//     by independently rescanning the cache directory and checking each
//     file's status and embedded print date against its filename. The
//     two manifests are allowed to diverge; the rescan is the
//     self-healing integrity check.
//
// The cache-first policy makes runs idempotent: a date file that exists,
// parses, and carries the success status is never refetched or
// rewritten.
package syncer
