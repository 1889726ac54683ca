// Package interact models an in-progress pointer drag of a timed event
// on a single-day timeline: moving it, or resizing either end.
//
// The reducer knows nothing about time zones. A drag's pixel-to-minute
// mapping depends only on the timeline's height, and a delta between
// two points on the same timeline is zone-independent, so it operates
// purely on instant deltas.
package interact

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Mode selects which endpoint(s) a drag manipulates.
type Mode int

const (
	Move Mode = iota
	ResizeStart
	ResizeEnd
)

func (m Mode) String() string {
	switch m {
	case Move:
		return "move"
	case ResizeStart:
		return "resizeStart"
	case ResizeEnd:
		return "resizeEnd"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps the wire name of a mode to its value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "move":
		return Move, nil
	case "resizeStart":
		return ResizeStart, nil
	case "resizeEnd":
		return ResizeEnd, nil
	default:
		return 0, fmt.Errorf("unknown interaction mode %q", s)
	}
}

// State is the reducer's phase.
type State int

const (
	Idle State = iota
	Dragging
)

const (
	snapMinutes   = 15
	minDuration   = 15 * time.Minute
	minutesPerDay = 24 * 60
)

// ErrDragInProgress is returned by Begin while a drag is active;
// concurrent drags are disallowed by construction.
var ErrDragInProgress = errors.New("a drag is already in progress")

// ErrNoDrag is returned by Commit when no drag is active.
var ErrNoDrag = errors.New("no drag in progress")

// Reducer is the state machine for one timeline's drag interaction.
// It produces candidate (start, end) pairs but never commits them
// itself; the candidate only takes effect when the caller applies a
// changed Commit result.
type Reducer struct {
	state   State
	eventID string
	mode    Mode

	anchorY  float64
	heightPx float64

	initialStart time.Time
	initialEnd   time.Time
	candStart    time.Time
	candEnd      time.Time
}

// State returns the current phase.
func (r *Reducer) State() State { return r.state }

// EventID returns the id of the event being dragged, or "" when idle.
func (r *Reducer) EventID() string { return r.eventID }

// Begin starts a drag for the given event. pointerY is the pointer's
// vertical position and timelineHeightPx the timeline's rendered
// height; both in pixels. A second Begin while dragging is a caller
// error.
func (r *Reducer) Begin(eventID string, mode Mode, pointerY, timelineHeightPx float64, start, end time.Time) error {
	if r.state != Idle {
		return ErrDragInProgress
	}
	if timelineHeightPx <= 0 {
		return fmt.Errorf("timeline height must be positive, got %v", timelineHeightPx)
	}

	r.state = Dragging
	r.eventID = eventID
	r.mode = mode
	r.anchorY = pointerY
	r.heightPx = timelineHeightPx
	r.initialStart = start
	r.initialEnd = end
	r.candStart = start
	r.candEnd = end
	return nil
}

// Update recomputes the candidate from the pointer's current position,
// snapping the delta to quarter-hour steps. Move shifts both endpoints,
// preserving duration; the resize modes shift one endpoint and clamp so
// the event never shrinks below 15 minutes. Update while idle is a
// no-op.
func (r *Reducer) Update(pointerY float64) (start, end time.Time) {
	if r.state != Dragging {
		return r.candStart, r.candEnd
	}

	raw := pixelsToMinutes(pointerY-r.anchorY, r.heightPx)
	snapped := math.Round(raw/snapMinutes) * snapMinutes
	delta := time.Duration(snapped) * time.Minute

	switch r.mode {
	case Move:
		r.candStart = r.initialStart.Add(delta)
		r.candEnd = r.initialEnd.Add(delta)
	case ResizeEnd:
		r.candStart = r.initialStart
		r.candEnd = r.initialEnd.Add(delta)
		if r.candEnd.Sub(r.candStart) < minDuration {
			r.candEnd = r.candStart.Add(minDuration)
		}
	case ResizeStart:
		r.candEnd = r.initialEnd
		r.candStart = r.initialStart.Add(delta)
		if r.candEnd.Sub(r.candStart) < minDuration {
			r.candStart = r.candEnd.Add(-minDuration)
		}
	}
	return r.candStart, r.candEnd
}

// Candidate returns the current candidate pair without ending the drag.
func (r *Reducer) Candidate() (start, end time.Time) {
	return r.candStart, r.candEnd
}

// Commit ends the drag and returns the candidate. changed reports
// whether it differs from the original by instant equality; an
// unchanged candidate must be discarded with no side effect.
func (r *Reducer) Commit() (start, end time.Time, changed bool, err error) {
	if r.state != Dragging {
		return time.Time{}, time.Time{}, false, ErrNoDrag
	}
	start, end = r.candStart, r.candEnd
	changed = !start.Equal(r.initialStart) || !end.Equal(r.initialEnd)
	r.reset()
	return start, end, changed, nil
}

// Cancel discards the candidate and returns to Idle.
func (r *Reducer) Cancel() { r.reset() }

func (r *Reducer) reset() {
	*r = Reducer{}
}

func pixelsToMinutes(px, timelineHeightPx float64) float64 {
	return px / timelineHeightPx * minutesPerDay
}
