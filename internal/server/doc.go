// Package server exposes the synced puzzle cache and the play engine
// over HTTP.
//
// Read endpoints serve files straight from the cache directory the
// sync job maintains, with a fallback chain for dates that were never
// fetched: exact file, then best-date resolution through the index
// manifest, then the latest-alias, then 404. Play endpoints hold
// in-memory sessions keyed by opaque ids, persisting a progress
// snapshot after every mutation.
package server
