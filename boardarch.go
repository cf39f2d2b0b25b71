// Package boardarch provides an incremental archiver for web forum boards.
// It crawls a board's topic listing and per-topic post pages, extracts
// structured post data, and merges each run's results into per-board JSON
// documents on disk without losing or duplicating previously captured data.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., fs/, rod/, goquery/).
package boardarch
