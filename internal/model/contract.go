package model

type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusCompleted  ContractStatus = "completed"
	ContractStatusFinalWorks ContractStatus = "final_works"
	ContractStatusExtension  ContractStatus = "extension"
	ContractStatusArchived   ContractStatus = "archived"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusActive, ContractStatusCompleted, ContractStatusFinalWorks,
		ContractStatusExtension, ContractStatusArchived:
		return true
	}
	return false
}

type Contract struct {
	ID                  string              `json:"id"`
	ContractNumber      string              `json:"contractNumber"`
	ObjectID            string              `json:"objectId"`
	ClientName          string              `json:"clientName"`
	StartDate           Date                `json:"startDate"`
	EndDate             Date                `json:"endDate"`
	Status              ContractStatus      `json:"status"`
	AssignedEngineerIDs []string            `json:"assignedEngineerIds"`
	WorkTypes           []string            `json:"workTypes"`
	MaintenancePeriods  []MaintenancePeriod `json:"maintenancePeriods"`
	ContractValue       *float64            `json:"contractValue,omitempty"`
	Notes               string              `json:"notes,omitempty"`
}

func (c Contract) EntityID() string { return c.ID }

func (c Contract) IsArchived() bool { return c.Status == ContractStatusArchived }

func (c Contract) HasEngineer(id string) bool {
	for _, engineerID := range c.AssignedEngineerIDs {
		if engineerID == id {
			return true
		}
	}
	return false
}

// Period returns the index of the maintenance period with the given id, or -1.
func (c Contract) Period(id string) int {
	for i := range c.MaintenancePeriods {
		if c.MaintenancePeriods[i].ID == id {
			return i
		}
	}
	return -1
}
