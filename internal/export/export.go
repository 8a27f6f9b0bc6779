package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/limaJavier/timetabling-csp/pkg/model"
)

const (
	timetableSheet   = "Timetable"
	unscheduledSheet = "Unscheduled"
)

var ErrNoSchedule = errors.New("no schedule to export")

// Workbook renders a schedule as one row per time slot and one column per room; an extra sheet
// lists the courses left unscheduled. Double-booked cells list every course, one per line.
func Workbook(schedule *model.Schedule, input model.ModelInput, unscheduled []string) (*bytes.Buffer, error) {
	if schedule == nil {
		return nil, ErrNoSchedule
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(timetableSheet)
	if err != nil {
		return nil, fmt.Errorf("cannot create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("cannot drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create cell style: %w", err)
	}

	//** Header
	f.SetColWidth(timetableSheet, "A", "A", 16)
	f.SetCellValue(timetableSheet, cell(1, 1), "Time slot")
	for i, room := range input.Rooms {
		col := colName(i + 2)
		f.SetColWidth(timetableSheet, col, col, 24)
		f.SetCellValue(timetableSheet, cell(i+2, 1), fmt.Sprintf("%v (%v)", room.Id, room.Capacity))
	}
	f.SetCellStyle(timetableSheet, cell(1, 1), cell(len(input.Rooms)+1, 1), headerStyle)

	//** Rows
	occupants := make(map[[2]string][]string)
	for _, course := range schedule.Courses() {
		assignment, _ := schedule.Get(course)
		key := [2]string{string(assignment.TimeSlot), assignment.Room}
		occupants[key] = append(occupants[key], fmt.Sprintf("%v (%v)", course, assignment.Professor))
	}
	for i, slot := range input.TimeSlots {
		row := i + 2
		f.SetCellValue(timetableSheet, cell(1, row), string(slot))
		for j, room := range input.Rooms {
			text := "-"
			if courses, ok := occupants[[2]string{string(slot), room.Id}]; ok {
				text = strings.Join(courses, "\n")
			}
			f.SetCellValue(timetableSheet, cell(j+2, row), text)
		}
	}
	if len(input.TimeSlots) > 0 && len(input.Rooms) > 0 {
		f.SetCellStyle(timetableSheet, cell(2, 2), cell(len(input.Rooms)+1, len(input.TimeSlots)+1), cellStyle)
	}

	//** Unscheduled courses
	if _, err := f.NewSheet(unscheduledSheet); err != nil {
		return nil, fmt.Errorf("cannot create sheet: %w", err)
	}
	f.SetColWidth(unscheduledSheet, "A", "A", 24)
	f.SetCellValue(unscheduledSheet, cell(1, 1), "Course")
	f.SetCellStyle(unscheduledSheet, cell(1, 1), cell(1, 1), headerStyle)
	ordered := slices.Clone(unscheduled)
	slices.Sort(ordered)
	for i, course := range lo.Uniq(ordered) {
		f.SetCellValue(unscheduledSheet, cell(1, i+2), course)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("cannot write workbook: %w", err)
	}
	return buf, nil
}

// JSON writes any result document indented, followed by a newline.
func JSON(w io.Writer, document any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(document)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx)
	return name
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
