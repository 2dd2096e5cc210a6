package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, time.April, d, 0, 0, 0, 0, time.UTC)
}

func TestDetect_OverlappingPair(t *testing.T) {
	events := []TimedEvent{
		{ID: "a", UnitID: "unit-1", Kind: KindReservation, Start: day(1), End: day(3)},
		{ID: "b", UnitID: "unit-1", Kind: KindReservation, Start: day(2), End: day(4)},
	}

	pairs := Detect(events)

	require.Len(t, pairs, 1)
	assert.Equal(t, "unit-1", pairs[0].UnitID)
	assert.Equal(t, "a", pairs[0].First.ID)
	assert.Equal(t, "b", pairs[0].Second.ID)
	assert.True(t, pairs[0].OverlapStart.Equal(day(2)))
	assert.True(t, pairs[0].OverlapEnd.Equal(day(3)))
}

func TestDetect_AdjacentIsNotConflict(t *testing.T) {
	// Back-to-back stays: one checks out exactly when the next checks in.
	events := []TimedEvent{
		{ID: "a", UnitID: "unit-1", Start: day(1), End: day(2)},
		{ID: "b", UnitID: "unit-1", Start: day(2), End: day(3)},
	}

	assert.Empty(t, Detect(events))
}

func TestDetect_DifferentUnitsNeverConflict(t *testing.T) {
	events := []TimedEvent{
		{ID: "a", UnitID: "unit-1", Start: day(1), End: day(5)},
		{ID: "b", UnitID: "unit-2", Start: day(2), End: day(4)},
	}

	assert.Empty(t, Detect(events))
}

func TestDetect_ContainedInterval(t *testing.T) {
	events := []TimedEvent{
		{ID: "outer", UnitID: "unit-1", Start: day(1), End: day(10)},
		{ID: "inner", UnitID: "unit-1", Start: day(3), End: day(5)},
	}

	pairs := Detect(events)

	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].OverlapStart.Equal(day(3)))
	assert.True(t, pairs[0].OverlapEnd.Equal(day(5)))
}

func TestDetect_ThreeWayOverlapEmitsAllPairs(t *testing.T) {
	events := []TimedEvent{
		{ID: "a", UnitID: "unit-1", Start: day(1), End: day(4)},
		{ID: "b", UnitID: "unit-1", Start: day(2), End: day(5)},
		{ID: "c", UnitID: "unit-1", Start: day(3), End: day(6)},
	}

	pairs := Detect(events)
	assert.Len(t, pairs, 3)
}

func TestDetect_BlockAgainstReservation(t *testing.T) {
	events := []TimedEvent{
		{ID: "res", UnitID: "unit-1", Kind: KindReservation, Start: day(1), End: day(4)},
		{ID: "blk", UnitID: "unit-1", Kind: KindBlock, Start: day(3), End: day(7)},
	}

	pairs := Detect(events)

	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].OverlapStart.Equal(day(3)))
	assert.True(t, pairs[0].OverlapEnd.Equal(day(4)))
}

func TestDetect_Empty(t *testing.T) {
	assert.Empty(t, Detect(nil))
	assert.Empty(t, Detect([]TimedEvent{{ID: "only", UnitID: "unit-1", Start: day(1), End: day(2)}}))
}

func TestFlagConflicts(t *testing.T) {
	events := []TimedEvent{
		{ID: "a", UnitID: "unit-1", Start: day(1), End: day(3)},
		{ID: "b", UnitID: "unit-1", Start: day(2), End: day(4)},
		{ID: "c", UnitID: "unit-1", Start: day(10), End: day(12)},
	}

	flagged := FlagConflicts(Detect(events))

	assert.True(t, flagged["a"])
	assert.True(t, flagged["b"])
	assert.False(t, flagged["c"])
}
