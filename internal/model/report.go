package model

type MaintenanceReport struct {
	ID                   string     `json:"id"`
	ContractID           string     `json:"contractId"`
	EngineerID           string     `json:"engineerId"`
	MaintenancePeriodID  *string    `json:"maintenancePeriodId,omitempty"`
	CompletedDate        Date       `json:"completedDate"`
	StartTime            string     `json:"startTime,omitempty"`
	EndTime              string     `json:"endTime,omitempty"`
	Department           Department `json:"department"`
	WorkDescription      string     `json:"workDescription"`
	Issues               string     `json:"issues,omitempty"`
	Recommendations      string     `json:"recommendations,omitempty"`
	MaterialsUsed        string     `json:"materialsUsed,omitempty"`
	NextMaintenanceNotes string     `json:"nextMaintenanceNotes,omitempty"`
}

func (r MaintenanceReport) EntityID() string { return r.ID }

// ReportDocument gathers everything the report certificate prints.
type ReportDocument struct {
	Report   MaintenanceReport
	Contract Contract
	Object   ServiceObject
	Engineer ServiceEngineer
}
