package model

import "time"

type PeriodStatus string

const (
	PeriodStatusPlanned    PeriodStatus = "planned"
	PeriodStatusAdjusted   PeriodStatus = "adjusted"
	PeriodStatusInProgress PeriodStatus = "in_progress"
	PeriodStatusCompleted  PeriodStatus = "completed"
)

// Rank orders period statuses; transitions may only increase it.
func (s PeriodStatus) Rank() int {
	switch s {
	case PeriodStatusPlanned:
		return 0
	case PeriodStatusAdjusted:
		return 1
	case PeriodStatusInProgress:
		return 2
	case PeriodStatusCompleted:
		return 3
	}
	return -1
}

func (s PeriodStatus) Valid() bool { return s.Rank() >= 0 }

type Department string

const (
	DepartmentKOND Department = "КОНД"
	DepartmentDBZh Department = "ДБЖ"
	DepartmentDGU  Department = "ДГУ"
)

func Departments() []Department {
	return []Department{DepartmentKOND, DepartmentDBZh, DepartmentDGU}
}

func (d Department) Valid() bool {
	switch d {
	case DepartmentKOND, DepartmentDBZh, DepartmentDGU:
		return true
	}
	return false
}

type MaintenancePeriod struct {
	ID                string       `json:"id"`
	StartDate         Date         `json:"startDate"`
	EndDate           Date         `json:"endDate"`
	AdjustedStartDate *Date        `json:"adjustedStartDate,omitempty"`
	AdjustedEndDate   *Date        `json:"adjustedEndDate,omitempty"`
	Status            PeriodStatus `json:"status"`
	AdjustedBy        string       `json:"adjustedBy,omitempty"`
	AdjustedDate      *time.Time   `json:"adjustedDate,omitempty"`
	Departments       []Department `json:"departments"`
}

// EffectiveStart is the adjusted start when present, else the planned one.
func (p MaintenancePeriod) EffectiveStart() Date {
	if p.AdjustedStartDate != nil && !p.AdjustedStartDate.IsZero() {
		return *p.AdjustedStartDate
	}
	return p.StartDate
}

func (p MaintenancePeriod) EffectiveEnd() Date {
	if p.AdjustedEndDate != nil && !p.AdjustedEndDate.IsZero() {
		return *p.AdjustedEndDate
	}
	return p.EndDate
}

func (p MaintenancePeriod) IsAdjusted() bool {
	return p.AdjustedStartDate != nil || p.AdjustedEndDate != nil
}

func (p MaintenancePeriod) HasDepartment(d Department) bool {
	for _, dep := range p.Departments {
		if dep == d {
			return true
		}
	}
	return false
}
