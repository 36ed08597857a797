package service

import (
	"fmt"
	"slices"

	"github.com/evalex7/e-plan/internal/kanban"
	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/repository"
	"github.com/evalex7/e-plan/internal/schedule"
)

type ContractFilter struct {
	Status          model.ContractStatus
	IncludeArchived bool
}

// Contracts lists contracts in stored order. Archived contracts are left out
// unless asked for or filtered on explicitly.
func (e *Engine) Contracts(filter ContractFilter) []model.Contract {
	var result []model.Contract
	e.repo.View(func(tx *repository.Tx) {
		for _, c := range tx.Contracts() {
			if filter.Status != "" && c.Status != filter.Status {
				continue
			}
			if c.IsArchived() && !filter.IncludeArchived && filter.Status != model.ContractStatusArchived {
				continue
			}
			result = append(result, c)
		}
	})
	return nonNil(result)
}

func (e *Engine) Contract(id string) (model.Contract, error) {
	var (
		c   model.Contract
		err error
	)
	e.repo.View(func(tx *repository.Tx) { c, err = tx.Contract(id) })
	return c, err
}

func (e *Engine) Objects() []model.ServiceObject {
	var result []model.ServiceObject
	e.repo.View(func(tx *repository.Tx) { result = tx.Objects() })
	return result
}

func (e *Engine) Object(id string) (model.ServiceObject, error) {
	var (
		o   model.ServiceObject
		err error
	)
	e.repo.View(func(tx *repository.Tx) { o, err = tx.Object(id) })
	return o, err
}

func (e *Engine) Engineers() []model.ServiceEngineer {
	var result []model.ServiceEngineer
	e.repo.View(func(tx *repository.Tx) { result = tx.Engineers() })
	return result
}

func (e *Engine) Engineer(id string) (model.ServiceEngineer, error) {
	var (
		en  model.ServiceEngineer
		err error
	)
	e.repo.View(func(tx *repository.Tx) { en, err = tx.Engineer(id) })
	return en, err
}

type TaskFilter struct {
	ContractID string
	EngineerID string
	Status     model.TaskStatus
}

func (e *Engine) Tasks(filter TaskFilter) []model.MaintenanceTask {
	var result []model.MaintenanceTask
	e.repo.View(func(tx *repository.Tx) {
		for _, t := range tx.Tasks() {
			if filter.ContractID != "" && t.ContractID != filter.ContractID {
				continue
			}
			if filter.EngineerID != "" && t.EngineerID != filter.EngineerID {
				continue
			}
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
			result = append(result, t)
		}
	})
	return nonNil(result)
}

func (e *Engine) Task(id string) (model.MaintenanceTask, error) {
	var (
		t   model.MaintenanceTask
		err error
	)
	e.repo.View(func(tx *repository.Tx) { t, err = tx.Task(id) })
	return t, err
}

// Reports lists reports, optionally only those of one contract.
func (e *Engine) Reports(contractID string) []model.MaintenanceReport {
	var result []model.MaintenanceReport
	e.repo.View(func(tx *repository.Tx) {
		for _, r := range tx.Reports() {
			if contractID == "" || r.ContractID == contractID {
				result = append(result, r)
			}
		}
	})
	return nonNil(result)
}

func (e *Engine) Report(id string) (model.MaintenanceReport, error) {
	var (
		r   model.MaintenanceReport
		err error
	)
	e.repo.View(func(tx *repository.Tx) { r, err = tx.Report(id) })
	return r, err
}

// NextMaintenanceDate classifies the contract's nearest unfinished period
// against today. It only reads.
func (e *Engine) NextMaintenanceDate(c model.Contract) schedule.NextMaintenance {
	return schedule.Next(c, e.today(), e.opts.Schedule.DueWindowDays)
}

// ---- boards

type TaskCard struct {
	Card model.KanbanTask      `json:"card"`
	Task model.MaintenanceTask `json:"task"`
}

type TaskBoardColumn struct {
	Column model.TaskColumn `json:"column"`
	Cards  []TaskCard       `json:"cards"`
}

// TaskBoard returns the task board column by column. Cards whose task no
// longer exists are skipped. A non-empty column limits the result to it.
func (e *Engine) TaskBoard(column model.TaskColumn) ([]TaskBoardColumn, error) {
	if column != "" && !column.Valid() {
		return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidInput, column)
	}
	var result []TaskBoardColumn
	e.repo.View(func(tx *repository.Tx) {
		cards := tx.KanbanTasks()
		tasks := tx.Tasks()
		for _, col := range model.TaskColumns() {
			if column != "" && col != column {
				continue
			}
			view := TaskBoardColumn{Column: col, Cards: []TaskCard{}}
			for _, card := range kanban.Column(cards, string(col)) {
				i := slices.IndexFunc(tasks, func(t model.MaintenanceTask) bool { return t.ID == card.TaskID })
				if i < 0 {
					continue
				}
				view.Cards = append(view.Cards, TaskCard{Card: card, Task: tasks[i]})
			}
			result = append(result, view)
		}
	})
	return result, nil
}

type ContractCard struct {
	Card     model.ContractKanbanTask `json:"card"`
	Contract model.Contract           `json:"contract"`
}

type ContractBoardColumn struct {
	Column model.ContractColumn `json:"column"`
	Cards  []ContractCard       `json:"cards"`
}

func (e *Engine) ContractBoard(column model.ContractColumn) ([]ContractBoardColumn, error) {
	if column != "" && !column.Valid() {
		return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidInput, column)
	}
	var result []ContractBoardColumn
	e.repo.View(func(tx *repository.Tx) {
		cards := tx.ContractKanbanTasks()
		contracts := tx.Contracts()
		for _, col := range model.ContractColumns() {
			if column != "" && col != column {
				continue
			}
			view := ContractBoardColumn{Column: col, Cards: []ContractCard{}}
			for _, card := range kanban.Column(cards, string(col)) {
				i := slices.IndexFunc(contracts, func(c model.Contract) bool { return c.ID == card.ContractID })
				if i < 0 {
					continue
				}
				view.Cards = append(view.Cards, ContractCard{Card: card, Contract: contracts[i]})
			}
			result = append(result, view)
		}
	})
	return result, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
