package assembly

import (
	"errors"
	"fmt"

	"github.com/sap-gg/clifeed/internal/feed"
)

// State is the progress of one tag, and of the feed as a whole, through a publish run.
type State int

const (
	StateLoaded State = iota
	StateEntryLocated
	StateEntryUpdated
	StateVersionAssigned
	StateInserted
	StateAborted
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateEntryLocated:
		return "entry-located"
	case StateEntryUpdated:
		return "entry-updated"
	case StateVersionAssigned:
		return "version-assigned"
	case StateInserted:
		return "inserted"
	case StateAborted:
		return "aborted"
	case StatePersisted:
		return "persisted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// TagOutcome records how far one tag got.
type TagOutcome struct {
	Tag     string
	Major   int
	Version string
	State   State
	// Failed is the last state reached before an abort.
	Failed State
	Err    error
}

func (o *TagOutcome) advance(s State) {
	o.State = s
}

func (o *TagOutcome) abort(err error) error {
	o.Failed = o.State
	o.State = StateAborted
	o.Err = err
	return err
}

// Result is the outcome of publishing one feed.
type Result struct {
	Feed string
	// Before is the document as loaded, After the document with every
	// successful tag applied. After is nil when the feed could not be loaded.
	Before *feed.Document
	After  *feed.Document
	Tags   []*TagOutcome
	State  State
	// Path is where the feed was, or in a dry run would have been, written.
	Path string
}

// Err joins the errors of all aborted tags.
func (r *Result) Err() error {
	var combined error
	for _, t := range r.Tags {
		if t.Err != nil {
			combined = errors.Join(combined, fmt.Errorf("tag %s: %w", t.Tag, t.Err))
		}
	}
	return combined
}

// Complete reports whether every tag reached StateInserted.
func (r *Result) Complete() bool {
	for _, t := range r.Tags {
		if t.State != StateInserted {
			return false
		}
	}
	return true
}
