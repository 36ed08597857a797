package repository

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/evalex7/e-plan/internal/model"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func dedupe(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(result, v) {
			result = append(result, v)
		}
	}
	return result
}

func validateContract(c *model.Contract, newID func() string) error {
	c.ContractNumber = strings.TrimSpace(c.ContractNumber)
	c.ClientName = strings.TrimSpace(c.ClientName)
	c.ObjectID = strings.TrimSpace(c.ObjectID)
	if c.ContractNumber == "" {
		return invalid("contract number is required")
	}
	if c.ObjectID == "" {
		return invalid("object is required")
	}
	if c.ClientName == "" {
		return invalid("client name is required")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return invalid("contract dates are required")
	}
	if c.EndDate.Before(c.StartDate) {
		return invalid("contract ends before it starts")
	}
	if c.Status == "" {
		c.Status = model.ContractStatusActive
	}
	if !c.Status.Valid() {
		return invalid("unknown contract status %q", c.Status)
	}
	if c.ContractValue != nil && *c.ContractValue < 0 {
		return invalid("contract value must not be negative")
	}
	c.AssignedEngineerIDs = dedupe(c.AssignedEngineerIDs)
	c.WorkTypes = dedupe(c.WorkTypes)

	seen := make(map[string]struct{}, len(c.MaintenancePeriods))
	for i := range c.MaintenancePeriods {
		p := &c.MaintenancePeriods[i]
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			if newID == nil {
				return invalid("maintenance period id is required")
			}
			p.ID = newID()
		}
		if _, ok := seen[p.ID]; ok {
			return invalid("duplicate maintenance period %s", p.ID)
		}
		seen[p.ID] = struct{}{}
		if err := validatePeriod(p); err != nil {
			return err
		}
	}
	return nil
}

func validatePeriod(p *model.MaintenancePeriod) error {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return invalid("period %s: dates are required", p.ID)
	}
	if p.EndDate.Before(p.StartDate) {
		return invalid("period %s: ends before it starts", p.ID)
	}
	if p.AdjustedStartDate != nil && p.AdjustedEndDate != nil && !p.AdjustedStartDate.Before(*p.AdjustedEndDate) {
		return invalid("period %s: adjusted start must be before adjusted end", p.ID)
	}
	if p.Status == "" {
		p.Status = model.PeriodStatusPlanned
	}
	if !p.Status.Valid() {
		return invalid("period %s: unknown status %q", p.ID, p.Status)
	}
	if len(p.Departments) == 0 {
		return invalid("period %s: at least one department is required", p.ID)
	}
	for _, d := range p.Departments {
		if !d.Valid() {
			return invalid("period %s: unknown department %q", p.ID, d)
		}
	}
	return nil
}

func validateObject(o *model.ServiceObject) error {
	o.Name = strings.TrimSpace(o.Name)
	o.Address = strings.TrimSpace(o.Address)
	if o.Name == "" {
		return invalid("object name is required")
	}
	return nil
}

func validateEngineer(e *model.ServiceEngineer) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return invalid("engineer name is required")
	}
	e.Specialization = dedupe(e.Specialization)
	if len(e.Specialization) == 0 {
		return invalid("engineer %s: specialization is required", e.Name)
	}
	return nil
}

func validateTask(t *model.MaintenanceTask) error {
	t.ContractID = strings.TrimSpace(t.ContractID)
	t.EngineerID = strings.TrimSpace(t.EngineerID)
	if t.MaintenancePeriodID != nil && strings.TrimSpace(*t.MaintenancePeriodID) == "" {
		t.MaintenancePeriodID = nil
	}
	if t.ContractID == "" {
		return invalid("task contract is required")
	}
	if t.ScheduledDate.IsZero() {
		return invalid("task scheduled date is required")
	}
	if t.Duration <= 0 {
		return invalid("task duration must be positive")
	}
	if t.Type == "" {
		t.Type = model.TaskTypeMaintenance
	}
	if !t.Type.Valid() {
		return invalid("unknown task type %q", t.Type)
	}
	if t.Status == "" {
		t.Status = model.TaskStatusPlanned
	}
	if !t.Status.Valid() {
		return invalid("unknown task status %q", t.Status)
	}
	for _, d := range t.Departments {
		if !d.Valid() {
			return invalid("unknown department %q", d)
		}
	}
	return nil
}

func validateReport(r *model.MaintenanceReport) error {
	r.ContractID = strings.TrimSpace(r.ContractID)
	r.EngineerID = strings.TrimSpace(r.EngineerID)
	r.WorkDescription = strings.TrimSpace(r.WorkDescription)
	if r.ContractID == "" {
		return invalid("report contract is required")
	}
	if r.EngineerID == "" {
		return invalid("report engineer is required")
	}
	if r.CompletedDate.IsZero() {
		return invalid("report completion date is required")
	}
	if !r.Department.Valid() {
		return invalid("unknown department %q", r.Department)
	}
	if r.WorkDescription == "" {
		return invalid("work description is required")
	}
	start, err := parseClock(r.StartTime)
	if err != nil {
		return err
	}
	end, err := parseClock(r.EndTime)
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return invalid("report start time must be before end time")
	}
	return nil
}

func parseClock(raw string) (time.Time, error) {
	if raw = strings.TrimSpace(raw); raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return time.Time{}, invalid("time %q must be HH:MM", raw)
	}
	return t, nil
}
