package model

import "github.com/samber/lo"

type predicateEvaluatorStandard struct {
	inst *instance
}

func (evaluator *predicateEvaluatorStandard) RoomAllowed(course, room int) bool {
	required := evaluator.inst.fixedRoom[course]
	return required < 0 || required == room
}

func (evaluator *predicateEvaluatorStandard) ProfessorAvailable(professor, slot int) bool {
	return evaluator.inst.available[professor][slot]
}

func (evaluator *predicateEvaluatorStandard) RoomFree(schedule *Schedule, room, slot int) bool {
	return schedule.RoomUsage(evaluator.inst.rooms[room].Id, evaluator.inst.slots[slot]) == 0
}

func (evaluator *predicateEvaluatorStandard) ProfessorFree(schedule *Schedule, professor, slot int) bool {
	return schedule.ProfessorUsage(evaluator.inst.professors[professor], evaluator.inst.slots[slot]) == 0
}

func (evaluator *predicateEvaluatorStandard) OverlapFree(schedule *Schedule, course, slot int) bool {
	// Partners are indexed per course, so only the course's own pairs are inspected
	return !lo.SomeBy(evaluator.inst.partners[course], func(partner int) bool {
		assignment, ok := schedule.Get(evaluator.inst.courses[partner])
		return ok && assignment.TimeSlot == evaluator.inst.slots[slot]
	})
}

func (evaluator *predicateEvaluatorStandard) Fits(course, room int) bool {
	return evaluator.inst.students[course] <= evaluator.inst.rooms[room].Capacity
}

func (evaluator *predicateEvaluatorStandard) Valid(schedule *Schedule, course, professor, room, slot int) bool {
	return evaluator.RoomAllowed(course, room) &&
		evaluator.ProfessorAvailable(professor, slot) &&
		evaluator.RoomFree(schedule, room, slot) &&
		evaluator.ProfessorFree(schedule, professor, slot) &&
		evaluator.OverlapFree(schedule, course, slot)
}
