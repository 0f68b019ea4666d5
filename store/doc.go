// Package store persists snippet records: immutable files named
// {prefix}-{commitID} whose content is the exact bytes of one file at one
// commit.
//
// The store holds at most one record per prefix. A record is fresh when its
// embedded commit id equals a freshly resolved commit; otherwise it is stale
// and gets replaced. Freshness is the only validity criterion: there is no
// TTL and no content re-verification.
//
// Writes publish atomically: content lands in a temporary name first and is
// renamed into place, so a concurrent reader never observes a partially
// written record. When the store is backed by the local OS filesystem it can
// additionally serialize whole invocations with an advisory lock file, which
// closes the window between removing a stale record and writing its
// replacement.
package store
