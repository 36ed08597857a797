package model

import (
	"fmt"
	"strings"
)

// Collection names one repository collection by its export key.
type Collection string

const (
	CollectionContracts           Collection = "contracts"
	CollectionObjects             Collection = "objects"
	CollectionEngineers           Collection = "engineers"
	CollectionTasks               Collection = "tasks"
	CollectionKanbanTasks         Collection = "kanbanTasks"
	CollectionContractKanbanTasks Collection = "contractKanbanTasks"
	CollectionReports             Collection = "reports"
)

func Collections() []Collection {
	return []Collection{
		CollectionContracts,
		CollectionObjects,
		CollectionEngineers,
		CollectionTasks,
		CollectionKanbanTasks,
		CollectionContractKanbanTasks,
		CollectionReports,
	}
}

func ParseCollection(raw string) (Collection, error) {
	raw = strings.TrimSpace(raw)
	for _, c := range Collections() {
		if string(c) == raw || c.StorageKey() == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", raw)
}

// StorageKey is the persistence key the collection is written under.
func (c Collection) StorageKey() string {
	switch c {
	case CollectionKanbanTasks:
		return "kanban"
	case CollectionContractKanbanTasks:
		return "contract_kanban"
	case CollectionReports:
		return "maintenance_reports"
	}
	return string(c)
}

// Dataset holds every repository collection in stored order.
type Dataset struct {
	Contracts           []Contract           `json:"contracts"`
	Objects             []ServiceObject      `json:"objects"`
	Engineers           []ServiceEngineer    `json:"engineers"`
	Tasks               []MaintenanceTask    `json:"tasks"`
	KanbanTasks         []KanbanTask         `json:"kanbanTasks"`
	ContractKanbanTasks []ContractKanbanTask `json:"contractKanbanTasks"`
	Reports             []MaintenanceReport  `json:"reports"`
}

func EmptyDataset() Dataset {
	var ds Dataset
	ds.Normalize()
	return ds
}

// Normalize replaces nil slices with empty ones at every level so that an
// encode/decode round trip yields a deep-equal value.
func (ds *Dataset) Normalize() {
	if ds.Contracts == nil {
		ds.Contracts = []Contract{}
	}
	for i := range ds.Contracts {
		normalizeContract(&ds.Contracts[i])
	}
	if ds.Objects == nil {
		ds.Objects = []ServiceObject{}
	}
	if ds.Engineers == nil {
		ds.Engineers = []ServiceEngineer{}
	}
	for i := range ds.Engineers {
		if ds.Engineers[i].Specialization == nil {
			ds.Engineers[i].Specialization = []string{}
		}
	}
	if ds.Tasks == nil {
		ds.Tasks = []MaintenanceTask{}
	}
	for i := range ds.Tasks {
		if ds.Tasks[i].Departments == nil {
			ds.Tasks[i].Departments = []Department{}
		}
	}
	if ds.KanbanTasks == nil {
		ds.KanbanTasks = []KanbanTask{}
	}
	if ds.ContractKanbanTasks == nil {
		ds.ContractKanbanTasks = []ContractKanbanTask{}
	}
	if ds.Reports == nil {
		ds.Reports = []MaintenanceReport{}
	}
}

func normalizeContract(c *Contract) {
	if c.AssignedEngineerIDs == nil {
		c.AssignedEngineerIDs = []string{}
	}
	if c.WorkTypes == nil {
		c.WorkTypes = []string{}
	}
	if c.MaintenancePeriods == nil {
		c.MaintenancePeriods = []MaintenancePeriod{}
	}
	for i := range c.MaintenancePeriods {
		p := &c.MaintenancePeriods[i]
		if p.Departments == nil {
			p.Departments = []Department{}
		}
		if p.AdjustedStartDate != nil && p.AdjustedStartDate.IsZero() {
			p.AdjustedStartDate = nil
		}
		if p.AdjustedEndDate != nil && p.AdjustedEndDate.IsZero() {
			p.AdjustedEndDate = nil
		}
	}
}

// Replace copies the listed collections from src into ds.
func (ds *Dataset) Replace(src Dataset, collections ...Collection) {
	src = src.Clone()
	for _, c := range collections {
		switch c {
		case CollectionContracts:
			ds.Contracts = src.Contracts
		case CollectionObjects:
			ds.Objects = src.Objects
		case CollectionEngineers:
			ds.Engineers = src.Engineers
		case CollectionTasks:
			ds.Tasks = src.Tasks
		case CollectionKanbanTasks:
			ds.KanbanTasks = src.KanbanTasks
		case CollectionContractKanbanTasks:
			ds.ContractKanbanTasks = src.ContractKanbanTasks
		case CollectionReports:
			ds.Reports = src.Reports
		}
	}
	ds.Normalize()
}

// Section returns the collection as a value suitable for JSON encoding.
func (ds Dataset) Section(c Collection) any {
	switch c {
	case CollectionContracts:
		return ds.Contracts
	case CollectionObjects:
		return ds.Objects
	case CollectionEngineers:
		return ds.Engineers
	case CollectionTasks:
		return ds.Tasks
	case CollectionKanbanTasks:
		return ds.KanbanTasks
	case CollectionContractKanbanTasks:
		return ds.ContractKanbanTasks
	case CollectionReports:
		return ds.Reports
	}
	return nil
}

// SectionTarget returns a pointer the collection can be decoded into.
func (ds *Dataset) SectionTarget(c Collection) any {
	switch c {
	case CollectionContracts:
		return &ds.Contracts
	case CollectionObjects:
		return &ds.Objects
	case CollectionEngineers:
		return &ds.Engineers
	case CollectionTasks:
		return &ds.Tasks
	case CollectionKanbanTasks:
		return &ds.KanbanTasks
	case CollectionContractKanbanTasks:
		return &ds.ContractKanbanTasks
	case CollectionReports:
		return &ds.Reports
	}
	return nil
}
