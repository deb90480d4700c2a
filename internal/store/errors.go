package store

import (
	"fmt"
	"strings"
)

// StoreAccessError reports a store file that is unreadable or structurally
// incomplete: the file itself, a table, a column, or a store attribute.
type StoreAccessError struct {
	Path    string // store file consulted
	Missing string // name of the absent element, empty when Err carries the cause
	Err     error
}

func (e *StoreAccessError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("store %s: missing %s", e.Path, e.Missing)
	}
	return fmt.Sprintf("store %s: %v", e.Path, e.Err)
}

func (e *StoreAccessError) Unwrap() error { return e.Err }

// AmbiguousDetectorError reports a detector claimed by more than one trigger
// store file. Resolution order would be arbitrary, so the run aborts instead.
type AmbiguousDetectorError struct {
	Detector string
	Paths    []string
}

func (e *AmbiguousDetectorError) Error() string {
	return fmt.Sprintf("detector %s appears in multiple trigger stores: %s",
		e.Detector, strings.Join(e.Paths, ", "))
}

// JoinResolutionError reports a cross-store reference that does not resolve:
// a trigger index outside a detector's rows, a template id absent from the
// bank, or a detector no trigger store provides.
type JoinResolutionError struct {
	Path string // store file consulted, empty when no store covers the key
	Key  string // the reference that failed, e.g. "trigger index 523 for H1"
	Err  error
}

func (e *JoinResolutionError) Error() string {
	msg := "cannot resolve " + e.Key
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *JoinResolutionError) Unwrap() error { return e.Err }
