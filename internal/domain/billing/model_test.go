package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionPhases(t *testing.T) {
	periodEnd := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	phases := TransitionPhases("price_current", periodEnd, "price_target")
	require.Len(t, phases, 2)

	current, next := phases[0], phases[1]

	assert.Nil(t, current.Start)
	require.NotNil(t, current.End)
	assert.Equal(t, periodEnd, *current.End)
	assert.Equal(t, "price_current", current.PriceID)
	assert.Equal(t, ProrationNone, current.Proration)

	require.NotNil(t, next.Start)
	assert.Equal(t, periodEnd, *next.Start)
	assert.Nil(t, next.End)
	assert.Equal(t, "price_target", next.PriceID)
	assert.Equal(t, ProrationNone, next.Proration)

	// the two phases meet exactly at the period boundary
	assert.Equal(t, *current.End, *next.Start)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, NoSchedule, StateOf(nil))

	mirror := &Schedule{Phases: []Phase{{PriceID: "price_current"}}}
	assert.Equal(t, ScheduleMirrorsCurrent, StateOf(mirror))

	transition := &Schedule{Phases: TransitionPhases("price_current", time.Now(), "price_target")}
	assert.Equal(t, ScheduleHasTransition, StateOf(transition))
}
