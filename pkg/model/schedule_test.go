package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleUsageCounters(t *testing.T) {
	//** Arrange
	schedule := NewSchedule()

	//** Act
	schedule.Assign("A", Assignment{Professor: "P1", Room: "R1", TimeSlot: "9"})
	schedule.Assign("B", Assignment{Professor: "P1", Room: "R1", TimeSlot: "9"})
	schedule.Assign("A", Assignment{Professor: "P2", Room: "R2", TimeSlot: "9"})

	//** Assert
	assert.Equal(t, 2, schedule.Len())
	assert.Equal(t, 1, schedule.RoomUsage("R1", "9"))
	assert.Equal(t, 1, schedule.RoomUsage("R2", "9"))
	assert.Equal(t, 1, schedule.ProfessorUsage("P1", "9"))

	schedule.Unassign("B")
	schedule.Unassign("B")
	assert.Zero(t, schedule.RoomUsage("R1", "9"))
	assert.Zero(t, schedule.ProfessorUsage("P1", "9"))
	assert.Equal(t, []string{"A"}, schedule.Courses())
}

func TestScheduleCloneIsIndependent(t *testing.T) {
	schedule := NewSchedule()
	schedule.Assign("A", Assignment{Professor: "P1", Room: "R1", TimeSlot: "9"})

	clone := schedule.Clone()
	clone.Unassign("A")

	assert.Equal(t, 1, schedule.Len())
	assert.Equal(t, 1, schedule.RoomUsage("R1", "9"))
}

func TestScheduleJson(t *testing.T) {
	//** Arrange
	schedule := NewSchedule()
	schedule.Assign("Math101", Assignment{Professor: "P2", Room: "R1", TimeSlot: "9:00-10:00"})

	//** Act
	bytes, err := json.Marshal(schedule)
	require.NoError(t, err)
	decoded := NewSchedule()
	require.NoError(t, json.Unmarshal(bytes, decoded))

	//** Assert
	assert.JSONEq(t, `{"Math101": {"professor": "P2", "room": "R1", "timeSlot": "9:00-10:00"}}`, string(bytes))
	assert.Equal(t, 1, decoded.ProfessorUsage("P2", "9:00-10:00"))
}
