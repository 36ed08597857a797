package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/evalex7/e-plan/internal/model"
)

const (
	summarySheet = "Договори"
	tasksSheet   = "Роботи"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the schedule workbook: a contract summary, every task, and
// one sheet per engineer with their tasks.
func (g *Generator) Generate(report model.ScheduleReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, summarySheet, report)

	if _, err := file.NewSheet(tasksSheet); err != nil {
		return nil, err
	}
	g.writeTasks(file, tasksSheet, "Усі роботи", report.GeneratedOn, report.Tasks)

	usedNames := map[string]struct{}{summarySheet: {}, tasksSheet: {}}
	for _, group := range groupByEngineer(report.Tasks) {
		sheetName := buildSheetName(group.name, usedNames)
		usedNames[sheetName] = struct{}{}
		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		g.writeTasks(file, sheetName, group.name, report.GeneratedOn, group.tasks)
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.ScheduleReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Графік обслуговування")
	set("A2", "Сформовано")
	set("B2", report.GeneratedOn.Display())
	set("A3", "Договорів")
	set("B3", len(report.Contracts))

	tableRow := 5
	headers := []string{"№ договору", "Замовник", "Об'єкт", "Статус", "Початок", "Кінець", "Наступне ТО", "Стан", "Вартість"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, s := range report.Contracts {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), s.Contract.ContractNumber)
		set(fmt.Sprintf("B%d", row), s.Contract.ClientName)
		set(fmt.Sprintf("C%d", row), s.ObjectName)
		set(fmt.Sprintf("D%d", row), contractStatusLabel(s.Contract.Status))
		set(fmt.Sprintf("E%d", row), s.Contract.StartDate.Display())
		set(fmt.Sprintf("F%d", row), s.Contract.EndDate.Display())
		set(fmt.Sprintf("G%d", row), s.NextDate.Display())
		set(fmt.Sprintf("H%d", row), nextStatusLabel(s.NextStatus))
		set(fmt.Sprintf("I%d", row), formatMoney(s.Contract.ContractValue))
	}

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "C", 36)
	_ = file.SetColWidth(sheet, "D", "I", 14)
}

func (g *Generator) writeTasks(file *excelize.File, sheet, title string, generatedOn model.Date, tasks []model.TaskLine) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", title)
	set("A2", "Сформовано")
	set("B2", generatedOn.Display())
	set("A3", "Годин усього")
	set("B3", totalHours(tasks))

	tableRow := 5
	headers := []string{"Дата", "№ договору", "Об'єкт", "Інженер", "Відділи", "Тип", "Статус", "Годин"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, line := range tasks {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), line.Task.ScheduledDate.Display())
		set(fmt.Sprintf("B%d", row), line.ContractNumber)
		set(fmt.Sprintf("C%d", row), line.ObjectName)
		set(fmt.Sprintf("D%d", row), line.EngineerName)
		set(fmt.Sprintf("E%d", row), joinDepartments(line.Task.Departments))
		set(fmt.Sprintf("F%d", row), taskTypeLabel(line.Task.Type))
		set(fmt.Sprintf("G%d", row), taskStatusLabel(line.Task.Status))
		set(fmt.Sprintf("H%d", row), line.Task.Duration)
	}

	_ = file.SetColWidth(sheet, "A", "B", 14)
	_ = file.SetColWidth(sheet, "C", "D", 30)
	_ = file.SetColWidth(sheet, "E", "H", 14)
}

type engineerGroup struct {
	name  string
	tasks []model.TaskLine
}

func groupByEngineer(tasks []model.TaskLine) []engineerGroup {
	var groups []engineerGroup
	index := make(map[string]int)
	for _, line := range tasks {
		name := strings.TrimSpace(line.EngineerName)
		if name == "" {
			continue
		}
		pos, ok := index[name]
		if !ok {
			groups = append(groups, engineerGroup{name: name})
			pos = len(groups) - 1
			index[name] = pos
		}
		groups[pos].tasks = append(groups[pos].tasks, line)
	}
	return groups
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := []rune(sanitizeSheetName(name))
	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := string(base)
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := []rune(fmt.Sprintf("-%d", counter))
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = string(trimmed) + string(suffix)
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Лист"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Лист"
	}
	return value
}

func totalHours(tasks []model.TaskLine) float64 {
	total := 0.0
	for _, line := range tasks {
		total += line.Task.Duration
	}
	return total
}

func joinDepartments(departments []model.Department) string {
	parts := make([]string, len(departments))
	for i, d := range departments {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}

func formatMoney(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}

func contractStatusLabel(s model.ContractStatus) string {
	switch s {
	case model.ContractStatusActive:
		return "Активний"
	case model.ContractStatusCompleted:
		return "Завершений"
	case model.ContractStatusFinalWorks:
		return "Фінальні роботи"
	case model.ContractStatusExtension:
		return "Продовження"
	case model.ContractStatusArchived:
		return "Архів"
	}
	return string(s)
}

func nextStatusLabel(s string) string {
	switch s {
	case "overdue":
		return "Прострочено"
	case "due":
		return "Найближчим часом"
	case "upcoming":
		return "Заплановано"
	}
	return ""
}

func taskTypeLabel(t model.TaskType) string {
	switch t {
	case model.TaskTypeMaintenance:
		return "ТО"
	case model.TaskTypeInspection:
		return "Огляд"
	case model.TaskTypeRepair:
		return "Ремонт"
	case model.TaskTypeEmergency:
		return "Аварійний виклик"
	}
	return string(t)
}

func taskStatusLabel(s model.TaskStatus) string {
	switch s {
	case model.TaskStatusPlanned:
		return "Заплановано"
	case model.TaskStatusInProgress:
		return "В роботі"
	case model.TaskStatusCompleted:
		return "Виконано"
	case model.TaskStatusOverdue:
		return "Прострочено"
	case model.TaskStatusArchived:
		return "Архів"
	}
	return string(s)
}
