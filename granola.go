// Package granola provides a local cache and index for meetings recorded
// with the Granola transcription service. It syncs meeting documents,
// transcripts and notes into per-meeting folders on disk, rebuilds a flat
// JSON index from those folders, and answers list/show queries from it.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, http/, fs/).
package granola
