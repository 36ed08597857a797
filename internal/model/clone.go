package model

import "slices"

// Clone returns a deep copy sharing no mutable memory with ds.
func (ds Dataset) Clone() Dataset {
	out := Dataset{
		Contracts:           make([]Contract, len(ds.Contracts)),
		Objects:             slices.Clone(ds.Objects),
		Engineers:           make([]ServiceEngineer, len(ds.Engineers)),
		Tasks:               make([]MaintenanceTask, len(ds.Tasks)),
		KanbanTasks:         slices.Clone(ds.KanbanTasks),
		ContractKanbanTasks: slices.Clone(ds.ContractKanbanTasks),
		Reports:             make([]MaintenanceReport, len(ds.Reports)),
	}
	for i, c := range ds.Contracts {
		out.Contracts[i] = CloneContract(c)
	}
	for i, e := range ds.Engineers {
		out.Engineers[i] = CloneEngineer(e)
	}
	for i, t := range ds.Tasks {
		out.Tasks[i] = CloneTask(t)
	}
	for i, r := range ds.Reports {
		out.Reports[i] = CloneReport(r)
	}
	out.Normalize()
	return out
}

func CloneContract(c Contract) Contract {
	c.AssignedEngineerIDs = slices.Clone(c.AssignedEngineerIDs)
	c.WorkTypes = slices.Clone(c.WorkTypes)
	c.ContractValue = clonePtr(c.ContractValue)
	periods := make([]MaintenancePeriod, len(c.MaintenancePeriods))
	for i, p := range c.MaintenancePeriods {
		periods[i] = ClonePeriod(p)
	}
	if c.MaintenancePeriods == nil {
		periods = nil
	}
	c.MaintenancePeriods = periods
	return c
}

func ClonePeriod(p MaintenancePeriod) MaintenancePeriod {
	p.AdjustedStartDate = clonePtr(p.AdjustedStartDate)
	p.AdjustedEndDate = clonePtr(p.AdjustedEndDate)
	p.AdjustedDate = clonePtr(p.AdjustedDate)
	p.Departments = slices.Clone(p.Departments)
	return p
}

func CloneEngineer(e ServiceEngineer) ServiceEngineer {
	e.Specialization = slices.Clone(e.Specialization)
	return e
}

func CloneTask(t MaintenanceTask) MaintenanceTask {
	t.Departments = slices.Clone(t.Departments)
	t.MaintenancePeriodID = clonePtr(t.MaintenancePeriodID)
	return t
}

func CloneReport(r MaintenanceReport) MaintenanceReport {
	r.MaintenancePeriodID = clonePtr(r.MaintenancePeriodID)
	return r
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
