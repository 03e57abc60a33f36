package billing

// ScheduleState is where a subscription sits in the downgrade timeline. The
// only transitions this subsystem drives are
// NoSchedule -> ScheduleMirrorsCurrent (create from subscription) and
// ScheduleMirrorsCurrent -> ScheduleHasTransition (write the two-phase
// timeline). The provider releasing a finished schedule moves it back to
// NoSchedule on its own.
type ScheduleState string

const (
	// NoSchedule means the subscription has no schedule attached.
	NoSchedule ScheduleState = "no_schedule"
	// ScheduleMirrorsCurrent means a schedule exists whose single phase just
	// mirrors the subscription's running state.
	ScheduleMirrorsCurrent ScheduleState = "schedule_mirrors_current"
	// ScheduleHasTransition means the schedule carries a future phase that
	// will move the subscription to another price at the period boundary.
	ScheduleHasTransition ScheduleState = "schedule_has_transition"
)

// StateOf classifies a schedule. A nil schedule is NoSchedule.
func StateOf(s *Schedule) ScheduleState {
	if s == nil {
		return NoSchedule
	}
	if len(s.Phases) >= 2 {
		return ScheduleHasTransition
	}
	return ScheduleMirrorsCurrent
}
