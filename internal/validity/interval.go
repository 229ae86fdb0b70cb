// Package validity implements the interval engine shared by clearance and
// exclusion records: the validity-window value object, lifecycle
// classification, duration bucketing, and the scope-wide non-overlap
// validator.
//
// Both owning record types carry the same shape (optional start, optional
// end) and the same rules; this package exists so neither vertical grows its
// own drifting copy of the date logic.
package validity

import (
	"errors"
	"time"
)

// ErrInvalidInterval rejects windows whose end precedes their start. The
// bounds are never swapped on the caller's behalf.
var ErrInvalidInterval = errors.New("validity end cannot precede start")

// Interval is a validity window, half-open on the right: a record is in
// effect during [Start, End). A nil Start means "effective immediately /
// always has been"; a nil End means "indefinite, until revoked".
//
// Invariant: when both bounds are set, End >= Start (enforced by New).
type Interval struct {
	Start *time.Time
	End   *time.Time
}

// New validates and returns an interval. The only rejection is a defined end
// strictly before a defined start; open bounds pass through untouched.
func New(start, end *time.Time) (Interval, error) {
	if start != nil && end != nil && end.Before(*start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Unbounded reports whether both bounds are open. Such a window covers every
// point in time and conflicts with any sibling record in its scope.
func (iv Interval) Unbounded() bool {
	return iv.Start == nil && iv.End == nil
}

// DefaultedAt applies the create-time rule for records submitted without any
// dates: an omitted window means "starting now, indefinite", not "wholly
// unbounded". Intervals with at least one bound are returned unchanged.
//
// The distinction matters for overlap checking: [now, nil) can still pass
// against past-only siblings, while a truly unbounded window never can.
func (iv Interval) DefaultedAt(now time.Time) Interval {
	if iv.Unbounded() {
		return Interval{Start: &now}
	}
	return iv
}

// Covers reports whether t falls inside the window. The right boundary is
// exclusive: Covers(end) is false, the record is already expired at its end
// date. The left boundary is inclusive.
//
// Note the asymmetry with Overlaps, which treats touching endpoints as a
// conflict. Both behaviors are load-bearing; do not unify them without a
// product decision (see DESIGN.md).
func (iv Interval) Covers(t time.Time) bool {
	if iv.Start != nil && iv.Start.After(t) {
		return false
	}
	if iv.End != nil && !iv.End.After(t) {
		return false
	}
	return true
}

// Overlaps reports whether two windows intersect, generalized to open
// bounds. Comparisons are non-strict on both sides, so windows that merely
// touch (a.End == b.Start) do overlap. Symmetric by construction.
func (iv Interval) Overlaps(other Interval) bool {
	startsBeforeOtherEnds := iv.Start == nil || other.End == nil || !iv.Start.After(*other.End)
	endsAfterOtherStarts := iv.End == nil || other.Start == nil || !iv.End.Before(*other.Start)
	return startsBeforeOtherEnds && endsAfterOtherStarts
}

// State is the lifecycle of a record relative to a reference time. It is
// always recomputed from the interval, never persisted, so there is no
// stored status to drift out of sync.
type State string

const (
	StateFuture    State = "future"
	StateActive    State = "active"
	StatePermanent State = "permanent"
	StateExpired   State = "expired"
)

// Classify derives the lifecycle state at now.
//
// Evaluation order matters: a window can have a future start and a defined
// end at once, and FUTURE takes precedence. EXPIRED uses a strict end < now,
// so at now == end a record is no longer covered (half-open Covers) but not
// yet classified expired.
func (iv Interval) Classify(now time.Time) State {
	if iv.Start != nil && iv.Start.After(now) {
		return StateFuture
	}
	if iv.End != nil && iv.End.Before(now) {
		return StateExpired
	}
	if iv.End == nil {
		return StatePermanent
	}
	return StateActive
}

func (iv Interval) IsFuture(now time.Time) bool  { return iv.Classify(now) == StateFuture }
func (iv Interval) IsActive(now time.Time) bool  { return iv.Classify(now) == StateActive }
func (iv Interval) IsExpired(now time.Time) bool { return iv.Classify(now) == StateExpired }

// IsPermanent reports an open-ended window regardless of the reference time,
// matching the PERMANENT classification for non-future records.
func (iv Interval) IsPermanent() bool { return iv.End == nil }

// ExpiringWithin reports whether the window ends inside (now, now+windowDays].
// Callers use two fixed windows: 30 days for the "expiring soon" warning and
// 7 days for the "urgent renewal" warning.
func (iv Interval) ExpiringWithin(now time.Time, windowDays int) bool {
	if iv.End == nil {
		return false
	}
	if !iv.End.After(now) {
		return false
	}
	return !iv.End.After(now.AddDate(0, 0, windowDays))
}

// DurationDays returns the window length in whole days. ok is false when
// either bound is open (an unbounded window has no duration).
func (iv Interval) DurationDays() (days int, ok bool) {
	if iv.Start == nil || iv.End == nil {
		return 0, false
	}
	return int(iv.End.Sub(*iv.Start).Hours() / 24), true
}

// Bucket is the coarse duration classification used for reporting.
type Bucket string

const (
	BucketPermanent  Bucket = "permanent"   // no end date
	BucketShortTerm  Bucket = "short_term"  // <= 30 days
	BucketMediumTerm Bucket = "medium_term" // 31..365 days
	BucketLongTerm   Bucket = "long_term"   // > 365 days
	// BucketUnbounded covers the window shape the reports have no column
	// for: open start with a defined end.
	BucketUnbounded Bucket = "unbounded"
)

// DurationBucket classifies the window length. Permanent wins whenever the
// end is open; a defined end with an open start has no measurable duration
// and is reported as unbounded.
func (iv Interval) DurationBucket() Bucket {
	if iv.End == nil {
		return BucketPermanent
	}
	days, ok := iv.DurationDays()
	if !ok {
		return BucketUnbounded
	}
	switch {
	case days <= 30:
		return BucketShortTerm
	case days <= 365:
		return BucketMediumTerm
	default:
		return BucketLongTerm
	}
}
