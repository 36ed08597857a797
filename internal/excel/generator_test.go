package excel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/evalex7/e-plan/internal/model"
)

func TestGenerate(t *testing.T) {
	value := 1500.0
	report := model.ScheduleReport{
		GeneratedOn: date("2025-02-01"),
		Contracts: []model.ContractSummary{{
			Contract: model.Contract{
				ContractNumber: "12/25", ClientName: "ТОВ Сонце", Status: model.ContractStatusActive,
				StartDate: date("2025-01-01"), EndDate: date("2025-12-31"),
				ContractValue: &value,
			},
			ObjectName: "Котельня",
			NextDate:   date("2025-02-05"),
			NextStatus: "due",
		}},
		Tasks: []model.TaskLine{
			{Task: model.MaintenanceTask{ScheduledDate: date("2025-02-03"), Duration: 2,
				Type: model.TaskTypeMaintenance, Status: model.TaskStatusPlanned,
				Departments: []model.Department{model.DepartmentKOND, model.DepartmentDGU}},
				ContractNumber: "12/25", ObjectName: "Котельня", EngineerName: "Шевченко"},
			{Task: model.MaintenanceTask{ScheduledDate: date("2025-02-04"), Duration: 1.5,
				Type: model.TaskTypeRepair, Status: model.TaskStatusOverdue},
				ContractNumber: "12/25", ObjectName: "Котельня"},
		},
	}

	data, err := NewGenerator().Generate(report)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{summarySheet, tasksSheet, "Шевченко"}, file.GetSheetList())

	number, err := file.GetCellValue(summarySheet, "A6")
	require.NoError(t, err)
	assert.Equal(t, "12/25", number)
	state, err := file.GetCellValue(summarySheet, "H6")
	require.NoError(t, err)
	assert.Equal(t, "Найближчим часом", state)

	departments, err := file.GetCellValue(tasksSheet, "E6")
	require.NoError(t, err)
	assert.Equal(t, "КОНД, ДГУ", departments)
	status, err := file.GetCellValue(tasksSheet, "G7")
	require.NoError(t, err)
	assert.Equal(t, "Прострочено", status)
	hours, err := file.GetCellValue(tasksSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "3.5", hours)
}

func TestBuildSheetName(t *testing.T) {
	used := map[string]struct{}{"Іваненко": {}}
	assert.Equal(t, "Іваненко-2", buildSheetName("Іваненко", used))
	assert.Equal(t, "Лист", buildSheetName("   ", map[string]struct{}{}))

	long := strings.Repeat("Я", 40)
	assert.Len(t, []rune(buildSheetName(long, map[string]struct{}{})), 31)
}

func date(raw string) model.Date {
	d, err := model.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}
