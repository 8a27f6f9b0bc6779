package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instancesDirectory = "../../test/instances/"

func loadInstance(t *testing.T, name string) ModelInput {
	t.Helper()
	input, err := InputFromJson(filepath.Join(instancesDirectory, name))
	require.NoError(t, err, "cannot parse input file %v", name)
	return input
}

func TestAllTimetablersOnEveryInstance(t *testing.T) {
	testFiles, err := os.ReadDir(instancesDirectory)
	require.NoError(t, err)

	genetic, err := NewGeneticTimetabler(DefaultGeneticConfig())
	require.NoError(t, err)

	timetablers := map[string]Timetabler{
		"exact":         NewBacktrackingTimetabler(DefaultExactOptions()),
		"genetic":       genetic,
		"breadth-first": NewBreadthFirstTimetabler(),
		"depth-first":   NewDepthFirstTimetabler(),
		"greedy-table":  NewGreedyTableTimetabler(),
	}

	for _, file := range testFiles {
		for name, timetabler := range timetablers {
			t.Run(name+"/"+file.Name(), func(t *testing.T) {
				//** Arrange
				input := loadInstance(t, file.Name())

				//** Act
				result, err := timetabler.Build(context.Background(), input)

				//** Assert
				require.NoError(t, err)
				if !result.Feasible() {
					assert.ElementsMatch(t, courseIds(input), result.Unscheduled)
					return
				}
				// Scheduled and unscheduled courses partition the input
				g := NewWithT(t)
				g.Expect(append(result.Schedule.Courses(), result.Unscheduled...)).To(ConsistOf(courseIds(input)))
				assert.Equal(t, result.Stats.EnergyUsed, scheduleEnergyOf(t, result.Schedule, input))
			})
		}
	}
}

func TestVerifyRejectsBrokenSchedules(t *testing.T) {
	//** Arrange
	input := loadInstance(t, "scenario.json")
	valid := NewSchedule()
	valid.Assign("Math101", Assignment{Professor: "P2", Room: "R1", TimeSlot: "9:00-10:00"})
	valid.Assign("CS102", Assignment{Professor: "P3", Room: "R2", TimeSlot: "9:00-10:00"})
	valid.Assign("Bio201", Assignment{Professor: "P1", Room: "R1", TimeSlot: "10:00-11:00"})

	tamper := func(course string, assignment Assignment) *Schedule {
		schedule := valid.Clone()
		schedule.Assign(course, assignment)
		return schedule
	}
	missing := valid.Clone()
	missing.Unassign("CS102")

	//** Act & Assert
	assert.True(t, Verify(valid, input))
	assert.False(t, Verify(nil, input))
	assert.False(t, Verify(missing, input))
	assert.True(t, Verify(tamper("Bio201", Assignment{Professor: "P3", Room: "R1", TimeSlot: "11:00-12:00"}), input), "free slot")
	assert.False(t, Verify(tamper("Math101", Assignment{Professor: "P2", Room: "R2", TimeSlot: "10:00-11:00"}), input), "fixed room")
	assert.False(t, Verify(tamper("Bio201", Assignment{Professor: "P2", Room: "R2", TimeSlot: "11:00-12:00"}), input), "availability")
	assert.False(t, Verify(tamper("Math101", Assignment{Professor: "P1", Room: "R1", TimeSlot: "10:00-11:00"}), input), "room clash")
	assert.False(t, Verify(tamper("Bio201", Assignment{Professor: "P9", Room: "R1", TimeSlot: "10:00-11:00"}), input), "unknown professor")
}

func TestEnergySavings(t *testing.T) {
	//** Arrange
	input := loadInstance(t, "scenario.json")
	schedule, _, err := SolveExact(context.Background(), input)
	require.NoError(t, err)

	//** Act
	first, err1 := EnergySavings(schedule, input)
	second, err2 := EnergySavings(schedule, input)
	empty, err3 := EnergySavings(NewSchedule(), input)

	//** Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.NoError(t, err3)
	assert.Equal(t, first, second)
	assert.Equal(t, 55.56, first)
	assert.Equal(t, 100.0, empty)
	assert.LessOrEqual(t, first, 100.0)
}

func TestEnergySavingsZeroBaseline(t *testing.T) {
	input := ModelInput{Rooms: []Room{{Id: "Closet", Capacity: 0}}, TimeSlots: []TimeSlot{"9"}}

	_, err := EnergySavings(NewSchedule(), input)

	assert.ErrorIs(t, err, ErrZeroBaseline)
}

func TestEnergySavingsCanBeNegative(t *testing.T) {
	savings, err := energySavings(300, 200)

	assert.NoError(t, err)
	assert.Equal(t, -50.0, savings)
}

func courseIds(input ModelInput) []string {
	ids := make([]string, 0, len(input.Courses))
	for _, course := range input.Courses {
		ids = append(ids, course.Id)
	}
	return ids
}

func scheduleEnergyOf(t *testing.T, schedule *Schedule, input ModelInput) uint64 {
	t.Helper()
	inst, err := newInstance(input)
	require.NoError(t, err)
	return inst.scheduleEnergy(schedule)
}
