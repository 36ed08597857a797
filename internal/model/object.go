package model

// ServiceObject is a serviced site (building, plant room) a contract covers.
type ServiceObject struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	Description   string `json:"description,omitempty"`
	ContactPerson string `json:"contactPerson,omitempty"`
	ContactPhone  string `json:"contactPhone,omitempty"`
}

func (o ServiceObject) EntityID() string { return o.ID }

type ServiceEngineer struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Specialization []string `json:"specialization"`
	// Color is only used by boards to tint cards.
	Color string `json:"color,omitempty"`
}

func (e ServiceEngineer) EntityID() string { return e.ID }

func (e ServiceEngineer) Covers(departments []Department) bool {
	for _, spec := range e.Specialization {
		for _, dep := range departments {
			if spec == string(dep) {
				return true
			}
		}
	}
	return false
}
