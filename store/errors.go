package store

import "github.com/openmirror/landingzone/pkg/errors"

// Error codes shared by all store backends. Absent objects are never
// an error here: missing prefixes list empty and deletes of missing
// keys succeed, so the only shared failure kind is a backend fault.
var (
	ErrUnavailable = errors.MustNewCode("store.unavailable")
)
