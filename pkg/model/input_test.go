package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputFromJson(t *testing.T) {
	//** Act
	input := loadInstance(t, "enrollment.json")

	//** Assert
	assert.Equal(t, []Course{{Id: "CS102", Students: 30}, {Id: "Bio201", Students: 80}, {Id: "Math101", Students: 40}}, input.Courses)
	assert.Equal(t, map[string]string{"Math101": "R1"}, input.Constraints.RoomConstraints)
	assert.Equal(t, [][2]string{{"CS102", "Bio201"}}, input.Constraints.NoOverlap)
	assert.Equal(t, 70, input.Constraints.RoomCapacity["Bio201"])
	assert.Equal(t, []TimeSlot{"10:00-11:00", "11:00-12:00"}, input.ProfessorAvailability()["P1"])
}

func TestInputFromJsonMissingFile(t *testing.T) {
	_, err := InputFromJson(instancesDirectory + "missing.json")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedInput)
}

func TestInputFromJsonBytesMergesAvailability(t *testing.T) {
	//** Arrange
	document := []byte(`{
		"courses": [{ "id": "A" }],
		"professors": [{ "id": "P1", "availability": ["9"] }],
		"rooms": [{ "id": "R1", "capacity": 10 }],
		"timeSlots": ["9", "10"],
		"constraints": { "professorAvailability": { "P1": ["10", "9"] } }
	}`)

	//** Act
	input, err := InputFromJsonBytes(document)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []TimeSlot{"9", "10"}, input.Professors[0].Availability)
}

func TestMalformedInputs(t *testing.T) {
	scenarios := map[string]string{
		"not json":               `{"courses": [`,
		"wrong type":             `{"courses": "Math101"}`,
		"missing course id":      `{"courses": [{ "students": 3 }]}`,
		"negative capacity":      `{"rooms": [{ "id": "R1", "capacity": -1 }]}`,
		"duplicate course":       `{"courses": [{ "id": "A" }, { "id": "A" }]}`,
		"duplicate slot":         `{"timeSlots": ["9", "9"]}`,
		"unknown slot":           `{"professors": [{ "id": "P1", "availability": ["9"] }], "timeSlots": ["10"]}`,
		"unknown fixed room":     `{"courses": [{ "id": "A", "room": "R9" }]}`,
		"conflicting fixed room": `{"courses": [{ "id": "A", "room": "R1" }], "rooms": [{ "id": "R1", "capacity": 1 }, { "id": "R2", "capacity": 1 }], "constraints": { "roomConstraints": { "A": "R2" } }}`,
		"unknown professor":      `{"constraints": { "professorAvailability": { "P9": ["9"] } }, "timeSlots": ["9"]}`,
		"unknown pair course":    `{"courses": [{ "id": "A" }], "constraints": { "noOverlap": [["A", "B"]] }}`,
		"self pair":              `{"courses": [{ "id": "A" }], "constraints": { "noOverlap": [["A", "A"]] }}`,
		"short pair":             `{"courses": [{ "id": "A" }], "constraints": { "noOverlap": [["A"]] }}`,
		"unknown capacity":       `{"constraints": { "roomCapacityConstraints": { "A": 10 } }}`,
		"negative capacity need": `{"courses": [{ "id": "A" }], "constraints": { "roomCapacityConstraints": { "A": -10 } }}`,
		"fractional capacity":    `{"rooms": [{ "id": "R1", "capacity": 50.7 }]}`,
		"fractional students":    `{"courses": [{ "id": "A", "students": 50.9 }]}`,
		"fractional seats":       `{"courses": [{ "id": "A" }], "constraints": { "roomCapacityConstraints": { "A": 10.5 } }}`,
	}

	for name, document := range scenarios {
		t.Run(name, func(t *testing.T) {
			//** Act
			_, err := InputFromJsonBytes([]byte(document))

			//** Assert
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestInputFromJsonBytesAcceptsIntegralNumbers(t *testing.T) {
	input, err := InputFromJsonBytes([]byte(`{"courses": [{ "id": "A", "students": 50.0 }], "rooms": [{ "id": "R1", "capacity": 1e2 }]}`))

	require.NoError(t, err)
	assert.Equal(t, 50, input.Courses[0].Students)
	assert.Equal(t, 100, input.Rooms[0].Capacity)
}
