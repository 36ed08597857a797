package model

type TaskType string

const (
	TaskTypeMaintenance TaskType = "maintenance"
	TaskTypeInspection  TaskType = "inspection"
	TaskTypeRepair      TaskType = "repair"
	TaskTypeEmergency   TaskType = "emergency"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeMaintenance, TaskTypeInspection, TaskTypeRepair, TaskTypeEmergency:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusPlanned    TaskStatus = "planned"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusOverdue    TaskStatus = "overdue"
	TaskStatusArchived   TaskStatus = "archived"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPlanned, TaskStatusInProgress, TaskStatusCompleted,
		TaskStatusOverdue, TaskStatusArchived:
		return true
	}
	return false
}

type MaintenanceTask struct {
	ID            string       `json:"id"`
	ContractID    string       `json:"contractId"`
	ObjectID      string       `json:"objectId"`
	EngineerID    string       `json:"engineerId"`
	ScheduledDate Date         `json:"scheduledDate"`
	Type          TaskType     `json:"type"`
	Status        TaskStatus   `json:"status"`
	Duration      float64      `json:"duration"`
	Departments   []Department `json:"departments"`
	Description   string       `json:"description,omitempty"`
	// MaintenancePeriodID links a derived task back to its period; nil for ad-hoc tasks.
	MaintenancePeriodID *string `json:"maintenancePeriodId,omitempty"`
}

func (t MaintenanceTask) EntityID() string { return t.ID }

func (t MaintenanceTask) IsDerived() bool {
	return t.MaintenancePeriodID != nil && *t.MaintenancePeriodID != ""
}
