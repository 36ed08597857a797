// Package schedule derives maintenance tasks from contract maintenance periods
// and classifies upcoming maintenance.
package schedule

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/evalex7/e-plan/internal/kanban"
	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/repository"
)

type Options struct {
	// HoursPerDepartment is the planned duration of a derived task per department it covers.
	HoursPerDepartment float64
	// DueWindowDays is how close a deadline has to be to count as due.
	DueWindowDays int
}

func DefaultOptions() Options {
	return Options{HoursPerDepartment: 2, DueWindowDays: 7}
}

// Result is what a regeneration produced.
type Result struct {
	Tasks       []model.MaintenanceTask `json:"tasks"`
	KanbanTasks []model.KanbanTask      `json:"kanbanTasks"`
	Created     int                     `json:"created"`
	Updated     int                     `json:"updated"`
	Removed     int                     `json:"removed"`
}

// Today is the calendar day t falls on in t's location.
func Today(t time.Time) model.Date {
	return model.DateOf(now.With(t).BeginningOfDay())
}

// TaskID is the id of the task derived from a contract period.
func TaskID(contractID, periodID string) string {
	return model.DerivedID("task", contractID, periodID)
}

type periodKey struct {
	contractID string
	periodID   string
}

// Plan lists the task changes that bring tasks in line with contracts.
type Plan struct {
	Create []model.MaintenanceTask
	Update []model.MaintenanceTask
	Remove []string
}

func (p Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Remove) == 0
}

// Derive computes the plan. Every period of a non-archived contract gets
// exactly one task matched by (contract, period); derived tasks whose period
// or contract is gone or archived are removed; ad-hoc tasks only have their
// object and overdue state refreshed.
func Derive(contracts []model.Contract, engineers []model.ServiceEngineer, tasks []model.MaintenanceTask, today model.Date, opts Options) Plan {
	var plan Plan

	byID := make(map[string]model.Contract, len(contracts))
	for _, c := range contracts {
		byID[c.ID] = c
	}

	existing := make(map[periodKey]model.MaintenanceTask)
	for _, t := range tasks {
		if !t.IsDerived() {
			c, ok := byID[t.ContractID]
			if !ok {
				continue
			}
			next := model.CloneTask(t)
			next.ObjectID = c.ObjectID
			next.Status = dateStatus(next.Status, next.ScheduledDate, today)
			if !reflect.DeepEqual(next, t) {
				plan.Update = append(plan.Update, next)
			}
			continue
		}
		key := periodKey{t.ContractID, *t.MaintenancePeriodID}
		c, ok := byID[t.ContractID]
		if _, dup := existing[key]; dup || !ok || c.IsArchived() || c.Period(key.periodID) < 0 {
			plan.Remove = append(plan.Remove, t.ID)
			continue
		}
		existing[key] = t
	}

	for _, c := range contracts {
		if c.IsArchived() {
			continue
		}
		for _, p := range c.MaintenancePeriods {
			key := periodKey{c.ID, p.ID}
			current, ok := existing[key]
			var previous *model.MaintenanceTask
			if ok {
				previous = &current
			}
			next := deriveTask(c, p, previous, engineers, today, opts)
			switch {
			case previous == nil:
				plan.Create = append(plan.Create, next)
			case !reflect.DeepEqual(next, current):
				plan.Update = append(plan.Update, next)
			}
		}
	}
	return plan
}

func deriveTask(c model.Contract, p model.MaintenancePeriod, previous *model.MaintenanceTask, engineers []model.ServiceEngineer, today model.Date, opts Options) model.MaintenanceTask {
	periodID := p.ID
	next := model.MaintenanceTask{
		ID:                  TaskID(c.ID, p.ID),
		ContractID:          c.ID,
		ObjectID:            c.ObjectID,
		ScheduledDate:       p.EffectiveStart(),
		Type:                model.TaskTypeMaintenance,
		Status:              model.TaskStatusPlanned,
		Duration:            opts.HoursPerDepartment * float64(max(len(p.Departments), 1)),
		Departments:         slices.Clone(p.Departments),
		Description:         describe(c, p),
		MaintenancePeriodID: &periodID,
	}
	if previous != nil {
		next.ID = previous.ID
		next.Status = previous.Status
		next.EngineerID = previous.EngineerID
		if previous.Type.Valid() {
			next.Type = previous.Type
		}
		if previous.Description != "" {
			next.Description = previous.Description
		}
	}
	next.EngineerID = pickEngineer(c, p, next.EngineerID, engineers)
	next.Status = deriveStatus(next.Status, p, today)
	return next
}

func describe(c model.Contract, p model.MaintenancePeriod) string {
	departments := make([]string, len(p.Departments))
	for i, d := range p.Departments {
		departments[i] = string(d)
	}
	return fmt.Sprintf("ТО за договором №%s (%s)", c.ContractNumber, strings.Join(departments, ", "))
}

// deriveStatus follows the period: a completed period completes the task, a
// period in progress starts it. Otherwise a manually set status is kept and
// a planned task past its effective end becomes overdue.
func deriveStatus(current model.TaskStatus, p model.MaintenancePeriod, today model.Date) model.TaskStatus {
	switch p.Status {
	case model.PeriodStatusCompleted:
		return model.TaskStatusCompleted
	case model.PeriodStatusInProgress:
		if current == model.TaskStatusCompleted {
			return current
		}
		return model.TaskStatusInProgress
	}
	return dateStatus(current, p.EffectiveEnd(), today)
}

func dateStatus(current model.TaskStatus, deadline model.Date, today model.Date) model.TaskStatus {
	switch current {
	case model.TaskStatusPlanned, model.TaskStatusOverdue, "":
		if deadline.Before(today) {
			return model.TaskStatusOverdue
		}
		return model.TaskStatusPlanned
	}
	return current
}

// pickEngineer keeps the current engineer while they stay assigned, then
// prefers the first assigned engineer covering one of the period departments.
func pickEngineer(c model.Contract, p model.MaintenancePeriod, current string, engineers []model.ServiceEngineer) string {
	if current != "" && c.HasEngineer(current) {
		return current
	}
	assigned := make([]model.ServiceEngineer, 0, len(c.AssignedEngineerIDs))
	for _, id := range c.AssignedEngineerIDs {
		if i := slices.IndexFunc(engineers, func(e model.ServiceEngineer) bool { return e.ID == id }); i >= 0 {
			assigned = append(assigned, engineers[i])
		}
	}
	for _, e := range assigned {
		if e.Covers(p.Departments) {
			return e.ID
		}
	}
	if len(assigned) > 0 {
		return assigned[0].ID
	}
	return ""
}

// Regenerate applies the derived plan inside tx and rebuilds both boards.
func Regenerate(tx *repository.Tx, today model.Date, opts Options) (Result, error) {
	plan := Derive(tx.Contracts(), tx.Engineers(), tx.Tasks(), today, opts)

	for _, id := range plan.Remove {
		if err := tx.DeleteTask(id); err != nil {
			return Result{}, err
		}
	}
	for _, t := range plan.Update {
		if _, err := tx.UpdateTask(t.ID, func(task *model.MaintenanceTask) error {
			*task = model.CloneTask(t)
			return nil
		}); err != nil {
			return Result{}, err
		}
	}
	for _, t := range plan.Create {
		if _, err := tx.CreateTask(t); err != nil {
			return Result{}, err
		}
	}

	cards := kanban.SyncTaskBoard(tx.KanbanTasks(), tx.Tasks())
	if err := tx.SetKanbanTasks(cards); err != nil {
		return Result{}, err
	}
	contractCards := kanban.SyncContractBoard(tx.ContractKanbanTasks(), tx.Contracts())
	if err := tx.SetContractKanbanTasks(contractCards); err != nil {
		return Result{}, err
	}

	return Result{
		Tasks:       tx.Tasks(),
		KanbanTasks: cards,
		Created:     len(plan.Create),
		Updated:     len(plan.Update),
		Removed:     len(plan.Remove),
	}, nil
}
