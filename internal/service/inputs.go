package service

import (
	"slices"

	"github.com/evalex7/e-plan/internal/model"
)

// ContractPatch holds the contract fields to change; nil fields stay as they are.
type ContractPatch struct {
	ContractNumber      *string                    `json:"contractNumber"`
	ObjectID            *string                    `json:"objectId"`
	ClientName          *string                    `json:"clientName"`
	StartDate           *model.Date                `json:"startDate"`
	EndDate             *model.Date                `json:"endDate"`
	Status              *model.ContractStatus      `json:"status"`
	AssignedEngineerIDs *[]string                  `json:"assignedEngineerIds"`
	WorkTypes           *[]string                  `json:"workTypes"`
	MaintenancePeriods  *[]model.MaintenancePeriod `json:"maintenancePeriods"`
	ContractValue       *float64                   `json:"contractValue"`
	Notes               *string                    `json:"notes"`
}

func (p ContractPatch) apply(c *model.Contract) {
	set(&c.ContractNumber, p.ContractNumber)
	set(&c.ObjectID, p.ObjectID)
	set(&c.ClientName, p.ClientName)
	set(&c.StartDate, p.StartDate)
	set(&c.EndDate, p.EndDate)
	set(&c.Status, p.Status)
	set(&c.Notes, p.Notes)
	if p.AssignedEngineerIDs != nil {
		c.AssignedEngineerIDs = slices.Clone(*p.AssignedEngineerIDs)
	}
	if p.WorkTypes != nil {
		c.WorkTypes = slices.Clone(*p.WorkTypes)
	}
	if p.MaintenancePeriods != nil {
		periods := make([]model.MaintenancePeriod, len(*p.MaintenancePeriods))
		for i, period := range *p.MaintenancePeriods {
			periods[i] = model.ClonePeriod(period)
		}
		c.MaintenancePeriods = periods
	}
	if p.ContractValue != nil {
		value := *p.ContractValue
		c.ContractValue = &value
	}
}

type ObjectPatch struct {
	Name          *string `json:"name"`
	Address       *string `json:"address"`
	Description   *string `json:"description"`
	ContactPerson *string `json:"contactPerson"`
	ContactPhone  *string `json:"contactPhone"`
}

func (p ObjectPatch) apply(o *model.ServiceObject) {
	set(&o.Name, p.Name)
	set(&o.Address, p.Address)
	set(&o.Description, p.Description)
	set(&o.ContactPerson, p.ContactPerson)
	set(&o.ContactPhone, p.ContactPhone)
}

type EngineerPatch struct {
	Name           *string   `json:"name"`
	Phone          *string   `json:"phone"`
	Specialization *[]string `json:"specialization"`
	Color          *string   `json:"color"`
}

func (p EngineerPatch) apply(e *model.ServiceEngineer) {
	set(&e.Name, p.Name)
	set(&e.Phone, p.Phone)
	set(&e.Color, p.Color)
	if p.Specialization != nil {
		e.Specialization = slices.Clone(*p.Specialization)
	}
}

type TaskPatch struct {
	EngineerID    *string             `json:"engineerId"`
	ScheduledDate *model.Date         `json:"scheduledDate"`
	Type          *model.TaskType     `json:"type"`
	Status        *model.TaskStatus   `json:"status"`
	Duration      *float64            `json:"duration"`
	Departments   *[]model.Department `json:"departments"`
	Description   *string             `json:"description"`
}

func (p TaskPatch) apply(t *model.MaintenanceTask) {
	set(&t.EngineerID, p.EngineerID)
	set(&t.ScheduledDate, p.ScheduledDate)
	set(&t.Type, p.Type)
	set(&t.Status, p.Status)
	set(&t.Duration, p.Duration)
	set(&t.Description, p.Description)
	if p.Departments != nil {
		t.Departments = slices.Clone(*p.Departments)
	}
}

type ReportPatch struct {
	MaintenancePeriodID  *string           `json:"maintenancePeriodId"`
	CompletedDate        *model.Date       `json:"completedDate"`
	StartTime            *string           `json:"startTime"`
	EndTime              *string           `json:"endTime"`
	Department           *model.Department `json:"department"`
	WorkDescription      *string           `json:"workDescription"`
	Issues               *string           `json:"issues"`
	Recommendations      *string           `json:"recommendations"`
	MaterialsUsed        *string           `json:"materialsUsed"`
	NextMaintenanceNotes *string           `json:"nextMaintenanceNotes"`
}

func (p ReportPatch) apply(r *model.MaintenanceReport) {
	if p.MaintenancePeriodID != nil {
		id := *p.MaintenancePeriodID
		r.MaintenancePeriodID = &id
		if id == "" {
			r.MaintenancePeriodID = nil
		}
	}
	set(&r.CompletedDate, p.CompletedDate)
	set(&r.StartTime, p.StartTime)
	set(&r.EndTime, p.EndTime)
	set(&r.Department, p.Department)
	set(&r.WorkDescription, p.WorkDescription)
	set(&r.Issues, p.Issues)
	set(&r.Recommendations, p.Recommendations)
	set(&r.MaterialsUsed, p.MaterialsUsed)
	set(&r.NextMaintenanceNotes, p.NextMaintenanceNotes)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
