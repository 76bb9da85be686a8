// Package idgen provides the injected UuidGen collaborator from
// spec.md §6 ("UuidGen: new() → string"), used by Cold streams to mint
// a fresh request id per spec.md §4.3.
package idgen

import "github.com/google/uuid"

// Generator mints request ids.
type Generator interface {
	New() string
}

// UUID is the default Generator, backed by github.com/google/uuid —
// grounded on rclone-rclone/go.mod and goadesign-goa-ai/go.mod, both of
// which require it directly.
type UUID struct{}

// New returns a fresh random UUID string.
func (UUID) New() string {
	return uuid.NewString()
}

// Default is the process-wide default generator.
var Default Generator = UUID{}
