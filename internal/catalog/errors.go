package catalog

import "fmt"

// ResolutionError means an input referenced an entity that cannot be
// unambiguously placed: a song whose (artist, album) matches nothing, a
// file that maps to zero or multiple songs, a required field left empty.
// It aborts the single operation; nothing is committed.
type ResolutionError struct {
	Entity string // genre, artist, album, song, file, playlist
	Value  string // the offending natural key, if any
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("cannot resolve %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("cannot resolve %s %q: %s", e.Entity, e.Value, e.Reason)
}

// AmbiguousMatchError means a dimension lookup matched more than one row.
// That implies the uniqueness invariant was already broken before this
// operation; guessing which row was meant risks silently corrupting data,
// so it is always surfaced and never auto-resolved.
type AmbiguousMatchError struct {
	Dimension string
	Value     string
	Count     int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%s %q matches %d rows; dimension names must be unique",
		e.Dimension, e.Value, e.Count)
}

// NotFoundError means a delete or rename targeted an id that does not
// exist. The store is untouched.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}
