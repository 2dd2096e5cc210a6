// Package conflict detects overlapping reservations and availability
// blocks on the unified per-unit calendar.
package conflict

import (
	"sort"
	"time"
)

// Event kinds participating in detection.
const (
	KindReservation = "reservation"
	KindBlock       = "block"
)

// TimedEvent is the projection of a reservation or availability block to
// the interval shape the detector works on. Intervals are half-open:
// [Start, End).
type TimedEvent struct {
	ID     string    `json:"id"`
	UnitID string    `json:"unit_id"`
	Kind   string    `json:"kind"`
	Label  string    `json:"label"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// ConflictPair is two events on the same unit whose intervals intersect,
// plus the intersection sub-interval. Pairs are derived on every query and
// never persisted or cached.
type ConflictPair struct {
	UnitID       string     `json:"unit_id"`
	First        TimedEvent `json:"first"`
	Second       TimedEvent `json:"second"`
	OverlapStart time.Time  `json:"overlap_start"`
	OverlapEnd   time.Time  `json:"overlap_end"`
}

// Detect finds every pairwise interval overlap per unit. An event ending
// exactly when another begins is not a conflict (half-open semantics).
//
// The pairwise scan is O(n²) per unit on purpose: n is bounded by realistic
// booking density per unit per query window, and a sweep-line would buy
// nothing measurable here.
func Detect(events []TimedEvent) []ConflictPair {
	byUnit := make(map[string][]TimedEvent)
	for _, e := range events {
		byUnit[e.UnitID] = append(byUnit[e.UnitID], e)
	}

	units := make([]string, 0, len(byUnit))
	for unitID := range byUnit {
		units = append(units, unitID)
	}
	sort.Strings(units)

	var pairs []ConflictPair
	for _, unitID := range units {
		unitEvents := byUnit[unitID]
		sort.Slice(unitEvents, func(i, j int) bool {
			return unitEvents[i].Start.Before(unitEvents[j].Start)
		})

		for i := 0; i < len(unitEvents); i++ {
			for j := i + 1; j < len(unitEvents); j++ {
				a, b := unitEvents[i], unitEvents[j]
				if !overlaps(a, b) {
					continue
				}
				pairs = append(pairs, ConflictPair{
					UnitID:       unitID,
					First:        a,
					Second:       b,
					OverlapStart: maxTime(a.Start, b.Start),
					OverlapEnd:   minTime(a.End, b.End),
				})
			}
		}
	}

	return pairs
}

// FlagConflicts returns the set of event IDs that appear in at least one
// conflict pair. Annotating events is the caller's job; the detector only
// emits pairs.
func FlagConflicts(pairs []ConflictPair) map[string]bool {
	flagged := make(map[string]bool)
	for _, p := range pairs {
		flagged[p.First.ID] = true
		flagged[p.Second.ID] = true
	}
	return flagged
}

func overlaps(a, b TimedEvent) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
