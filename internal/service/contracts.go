package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/evalex7/e-plan/internal/kanban"
	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/repository"
)

func (e *Engine) AddContract(ctx context.Context, c model.Contract) (model.Contract, error) {
	var created model.Contract
	err := e.mutate(ctx, "contract.add", func(tx *repository.Tx) (string, error) {
		var err error
		if created, err = tx.CreateContract(c); err != nil {
			return "", err
		}
		return fmt.Sprintf("Added contract №%s", created.ContractNumber), nil
	})
	if err != nil {
		return model.Contract{}, err
	}
	return e.Contract(created.ID)
}

// UpdateContract applies patch. Period statuses may only move forward.
func (e *Engine) UpdateContract(ctx context.Context, id string, patch ContractPatch) (model.Contract, error) {
	err := e.mutate(ctx, "contract.update", func(tx *repository.Tx) (string, error) {
		updated, err := tx.UpdateContract(id, func(c *model.Contract) error {
			previous := model.CloneContract(*c)
			patch.apply(c)
			return checkPeriodTransitions(previous, *c)
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Updated contract №%s", updated.ContractNumber), nil
	})
	if err != nil {
		return model.Contract{}, err
	}
	return e.Contract(id)
}

func checkPeriodTransitions(previous, next model.Contract) error {
	for _, p := range next.MaintenancePeriods {
		i := previous.Period(p.ID)
		if i < 0 || p.Status == "" {
			continue
		}
		if old := previous.MaintenancePeriods[i].Status; p.Status.Rank() < old.Rank() {
			return fmt.Errorf("%w: period %s cannot go back from %s to %s", ErrInvalidInput, p.ID, old, p.Status)
		}
	}
	return nil
}

// RemoveContract deletes the contract with its tasks and board cards.
func (e *Engine) RemoveContract(ctx context.Context, id string) error {
	return e.mutate(ctx, "contract.remove", func(tx *repository.Tx) (string, error) {
		c, err := tx.Contract(id)
		if err != nil {
			return "", err
		}
		if err := tx.DeleteContract(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed contract №%s", c.ContractNumber), nil
	})
}

// ---- maintenance periods

func (e *Engine) AddMaintenancePeriod(ctx context.Context, contractID string, p model.MaintenancePeriod) (model.MaintenancePeriod, error) {
	var added model.MaintenancePeriod
	err := e.mutate(ctx, "period.add", func(tx *repository.Tx) (string, error) {
		p.Status = model.PeriodStatusPlanned
		p.AdjustedBy = ""
		p.AdjustedDate = nil
		updated, err := tx.UpdateContract(contractID, func(c *model.Contract) error {
			c.MaintenancePeriods = append(c.MaintenancePeriods, model.ClonePeriod(p))
			return nil
		})
		if err != nil {
			return "", err
		}
		added = updated.MaintenancePeriods[len(updated.MaintenancePeriods)-1]
		return fmt.Sprintf("Added maintenance period %s to contract №%s",
			added.StartDate.Display(), updated.ContractNumber), nil
	})
	return added, err
}

func (e *Engine) RemoveMaintenancePeriod(ctx context.Context, contractID, periodID string) error {
	return e.mutate(ctx, "period.remove", func(tx *repository.Tx) (string, error) {
		updated, err := tx.UpdateContract(contractID, func(c *model.Contract) error {
			i := c.Period(periodID)
			if i < 0 {
				return fmt.Errorf("%w: maintenance period %s", ErrNotFound, periodID)
			}
			c.MaintenancePeriods = append(c.MaintenancePeriods[:i], c.MaintenancePeriods[i+1:]...)
			return nil
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed maintenance period from contract №%s", updated.ContractNumber), nil
	})
}

// AdjustMaintenancePeriod overrides the period's dates. A planned period
// becomes adjusted; later statuses are kept. The derived task follows in the
// same transaction.
func (e *Engine) AdjustMaintenancePeriod(ctx context.Context, contractID, periodID string, start, end model.Date, adjustedBy string) (model.MaintenancePeriod, error) {
	if start.IsZero() || end.IsZero() {
		return model.MaintenancePeriod{}, fmt.Errorf("%w: adjusted dates are required", ErrInvalidInput)
	}
	if !start.Before(end) {
		return model.MaintenancePeriod{}, fmt.Errorf("%w: adjusted start %s must be before end %s", ErrInvalidInput, start, end)
	}
	adjustedBy = strings.TrimSpace(adjustedBy)
	if adjustedBy == "" {
		return model.MaintenancePeriod{}, fmt.Errorf("%w: adjustedBy is required", ErrInvalidInput)
	}

	var adjusted model.MaintenancePeriod
	err := e.mutate(ctx, "period.adjust", func(tx *repository.Tx) (string, error) {
		at := e.clock().UTC()
		updated, err := tx.UpdateContract(contractID, func(c *model.Contract) error {
			i := c.Period(periodID)
			if i < 0 {
				return fmt.Errorf("%w: maintenance period %s", ErrNotFound, periodID)
			}
			p := &c.MaintenancePeriods[i]
			p.AdjustedStartDate = &start
			p.AdjustedEndDate = &end
			p.AdjustedBy = adjustedBy
			p.AdjustedDate = &at
			if p.Status == model.PeriodStatusPlanned {
				p.Status = model.PeriodStatusAdjusted
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		adjusted = updated.MaintenancePeriods[updated.Period(periodID)]
		return fmt.Sprintf("Adjusted maintenance period of contract №%s to %s - %s",
			updated.ContractNumber, start.Display(), end.Display()), nil
	})
	return adjusted, err
}

// AdvanceMaintenancePeriod moves the period status forward. Asking for the
// current status is a no-op; going back is rejected.
func (e *Engine) AdvanceMaintenancePeriod(ctx context.Context, contractID, periodID string, status model.PeriodStatus) (model.MaintenancePeriod, error) {
	if !status.Valid() {
		return model.MaintenancePeriod{}, fmt.Errorf("%w: unknown period status %q", ErrInvalidInput, status)
	}
	var advanced model.MaintenancePeriod
	err := e.mutate(ctx, "period.status", func(tx *repository.Tx) (string, error) {
		updated, err := tx.UpdateContract(contractID, func(c *model.Contract) error {
			i := c.Period(periodID)
			if i < 0 {
				return fmt.Errorf("%w: maintenance period %s", ErrNotFound, periodID)
			}
			return advancePeriod(&c.MaintenancePeriods[i], status)
		})
		if err != nil {
			return "", err
		}
		advanced = updated.MaintenancePeriods[updated.Period(periodID)]
		return fmt.Sprintf("Marked maintenance period of contract №%s as %s", updated.ContractNumber, status), nil
	})
	return advanced, err
}

func advancePeriod(p *model.MaintenancePeriod, status model.PeriodStatus) error {
	if status.Rank() < p.Status.Rank() {
		return fmt.Errorf("%w: period %s cannot go back from %s to %s", ErrInvalidInput, p.ID, p.Status, status)
	}
	p.Status = status
	return nil
}

// ---- contract board

// MoveContractKanbanTask moves the contract's card to the end of column and
// sets the contract status the column stands for.
func (e *Engine) MoveContractKanbanTask(ctx context.Context, contractID string, column model.ContractColumn) (model.ContractKanbanTask, error) {
	if !column.Valid() {
		return model.ContractKanbanTask{}, fmt.Errorf("%w: unknown contract column %q", ErrInvalidInput, column)
	}
	err := e.mutate(ctx, "contract_kanban.move", func(tx *repository.Tx) (string, error) {
		c, err := tx.Contract(contractID)
		if err != nil {
			return "", err
		}
		if c.IsArchived() {
			return "", fmt.Errorf("%w: contract №%s is archived", ErrConflict, c.ContractNumber)
		}
		if _, err := tx.UpdateContract(contractID, func(c *model.Contract) error {
			c.Status = column.Status()
			return nil
		}); err != nil {
			return "", err
		}
		cards := tx.ContractKanbanTasks()
		if kanban.Find(cards, contractID) < 0 {
			cards = kanban.Append(cards, model.ContractKanbanTask{
				ID:         model.DerivedID("contract_kanban", contractID),
				ContractID: contractID,
				Column:     column,
			})
		} else if cards, err = kanban.Move(cards, contractID, string(column)); err != nil {
			return "", err
		}
		if err := tx.SetContractKanbanTasks(cards); err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved contract №%s to %s", c.ContractNumber, column), nil
	})
	if err != nil {
		return model.ContractKanbanTask{}, err
	}

	var card model.ContractKanbanTask
	e.repo.View(func(tx *repository.Tx) {
		cards := tx.ContractKanbanTasks()
		if i := kanban.Find(cards, contractID); i >= 0 {
			card = cards[i]
		}
	})
	return card, nil
}
