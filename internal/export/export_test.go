package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/limaJavier/timetabling-csp/pkg/model"
)

func scenario() (*model.Schedule, model.ModelInput) {
	input := model.ModelInput{
		Courses:    []model.Course{{Id: "Math101"}, {Id: "CS102"}, {Id: "Bio201"}},
		Professors: []model.Professor{{Id: "P1", Availability: []model.TimeSlot{"9", "10"}}, {Id: "P2", Availability: []model.TimeSlot{"9"}}},
		Rooms:      []model.Room{{Id: "R1", Capacity: 50}, {Id: "R2", Capacity: 100}},
		TimeSlots:  []model.TimeSlot{"9", "10"},
	}
	schedule := model.NewSchedule()
	schedule.Assign("Math101", model.Assignment{Professor: "P2", Room: "R1", TimeSlot: "9"})
	schedule.Assign("CS102", model.Assignment{Professor: "P1", Room: "R2", TimeSlot: "10"})
	return schedule, input
}

func TestWorkbook(t *testing.T) {
	//** Arrange
	schedule, input := scenario()

	//** Act
	buf, err := Workbook(schedule, input, []string{"Bio201"})
	require.NoError(t, err)

	//** Assert
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{timetableSheet, unscheduledSheet}, f.GetSheetList())
	rows, err := f.GetRows(timetableSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Time slot", "R1 (50)", "R2 (100)"},
		{"9", "Math101 (P2)", "-"},
		{"10", "-", "CS102 (P1)"},
	}, rows)

	missing, err := f.GetRows(unscheduledSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Course"}, {"Bio201"}}, missing)
}

func TestWorkbookListsDoubleBookings(t *testing.T) {
	schedule, input := scenario()
	schedule.Assign("Bio201", model.Assignment{Professor: "P1", Room: "R1", TimeSlot: "9"})

	buf, err := Workbook(schedule, input, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	value, err := f.GetCellValue(timetableSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Bio201 (P1)\nMath101 (P2)", value)
}

func TestWorkbookWithoutSchedule(t *testing.T) {
	_, input := scenario()

	_, err := Workbook(nil, input, nil)

	assert.ErrorIs(t, err, ErrNoSchedule)
}

func TestJSON(t *testing.T) {
	schedule, _ := scenario()
	var buf bytes.Buffer

	require.NoError(t, JSON(&buf, map[string]any{"schedule": schedule}))

	var decoded struct {
		Schedule map[string]model.Assignment `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, schedule.Entries(), decoded.Schedule)
}
