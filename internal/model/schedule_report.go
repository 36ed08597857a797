package model

// ScheduleReport is the content of the schedule workbook.
type ScheduleReport struct {
	GeneratedOn Date
	Contracts   []ContractSummary
	Tasks       []TaskLine
}

type ContractSummary struct {
	Contract   Contract
	ObjectName string
	// NextDate and NextStatus describe the nearest unfinished maintenance period.
	NextDate   Date
	NextStatus string
}

type TaskLine struct {
	Task           MaintenanceTask
	ContractNumber string
	ObjectName     string
	EngineerName   string
}
