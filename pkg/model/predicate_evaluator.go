package model

type predicateEvaluator interface {
	// Checks whether the room honours the course's fixed-room requirement (vacuously true when there is none)
	RoomAllowed(course, room int) bool

	// Checks whether the professor is available at the given slot
	ProfessorAvailable(professor, slot int) bool

	// Checks whether no course already occupies the room at the given slot
	RoomFree(schedule *Schedule, room, slot int) bool

	// Checks whether the professor is not already teaching at the given slot
	ProfessorFree(schedule *Schedule, professor, slot int) bool

	// Checks whether no already scheduled no-overlap partner of the course sits at the given slot
	OverlapFree(schedule *Schedule, course, slot int) bool

	// Checks whether the course's enrollment is smaller than or equal to the room's capacity (i.e. the course fits in the room)
	Fits(course, room int) bool

	// Runs every hard check in order, short-circuiting on the first failure
	Valid(schedule *Schedule, course, professor, room, slot int) bool
}

func newPredicateEvaluator(inst *instance) predicateEvaluator {
	return &predicateEvaluatorStandard{inst: inst}
}

// IsValidAssignment reports whether placing the course on (professor, room, slot) breaks no hard rule given the
// schedule built so far. Checks run in order: fixed room, availability, room occupancy, professor occupancy, no-overlap.
// Unknown ids are never valid. A malformed instance is an error, not an illegal move. The schedule is not modified.
func IsValidAssignment(modelInput ModelInput, schedule *Schedule, course, professor, room string, slot TimeSlot) (bool, error) {
	inst, err := newInstance(modelInput)
	if err != nil {
		return false, err
	}
	courseIndex, knownCourse := inst.courseIndex[course]
	professorIndex, knownProfessor := inst.professorIndex[professor]
	roomIndex, knownRoom := inst.roomIndex[room]
	slotIndex, knownSlot := inst.slotIndex[slot]
	if !knownCourse || !knownProfessor || !knownRoom || !knownSlot {
		return false, nil
	}
	if schedule == nil {
		schedule = NewSchedule()
	}
	return newPredicateEvaluator(inst).Valid(schedule, courseIndex, professorIndex, roomIndex, slotIndex), nil
}
