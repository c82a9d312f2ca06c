// Package boxdb implements the box-database file format: a newline-
// separated sequence of entries, each a box name followed by
// its textual TA representation (states, final states, transitions,
// selector/offset tables). Loading is idempotent — re-loading a file
// that names a box already present overwrites it rather than erroring,
// the same idempotent-registration pattern as
// label.BoxManager.RegisterBox.
package boxdb
