package service

import (
	"context"
	"fmt"

	"github.com/evalex7/e-plan/internal/kanban"
	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/repository"
)

// AddTask adds an ad-hoc task. It is not linked to any maintenance period.
func (e *Engine) AddTask(ctx context.Context, t model.MaintenanceTask) (model.MaintenanceTask, error) {
	var created model.MaintenanceTask
	err := e.mutate(ctx, "task.add", func(tx *repository.Tx) (string, error) {
		t.MaintenancePeriodID = nil
		var err error
		if created, err = tx.CreateTask(t); err != nil {
			return "", err
		}
		return fmt.Sprintf("Added task for %s", created.ScheduledDate.Display()), nil
	})
	if err != nil {
		return model.MaintenanceTask{}, err
	}
	return e.Task(created.ID)
}

// UpdateTask patches a task. Fields of a derived task that come from its
// period are re-derived afterwards.
func (e *Engine) UpdateTask(ctx context.Context, id string, patch TaskPatch) (model.MaintenanceTask, error) {
	err := e.mutate(ctx, "task.update", func(tx *repository.Tx) (string, error) {
		updated, err := tx.UpdateTask(id, func(t *model.MaintenanceTask) error {
			patch.apply(t)
			return nil
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Updated task for %s", updated.ScheduledDate.Display()), nil
	})
	if err != nil {
		return model.MaintenanceTask{}, err
	}
	return e.Task(id)
}

// RemoveTask deletes an ad-hoc task. Derived tasks go away with their period.
func (e *Engine) RemoveTask(ctx context.Context, id string) error {
	return e.mutate(ctx, "task.remove", func(tx *repository.Tx) (string, error) {
		t, err := tx.Task(id)
		if err != nil {
			return "", err
		}
		if t.IsDerived() {
			return "", fmt.Errorf("%w: task %s is derived from a maintenance period", ErrConflict, id)
		}
		if err := tx.DeleteTask(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed task for %s", t.ScheduledDate.Display()), nil
	})
}

var columnTaskStatus = map[model.TaskColumn]model.TaskStatus{
	model.TaskColumnPlanned:    model.TaskStatusPlanned,
	model.TaskColumnInProgress: model.TaskStatusInProgress,
	model.TaskColumnCompleted:  model.TaskStatusCompleted,
}

var columnPeriodStatus = map[model.TaskColumn]model.PeriodStatus{
	model.TaskColumnInProgress: model.PeriodStatusInProgress,
	model.TaskColumnCompleted:  model.PeriodStatusCompleted,
}

// MoveKanbanTask moves a task card to column and sets the task status the
// column stands for. The overdue column is managed by the schedule and
// cannot be a target. A derived task drags its period status forward.
func (e *Engine) MoveKanbanTask(ctx context.Context, taskID string, column model.TaskColumn) (model.KanbanTask, error) {
	status, ok := columnTaskStatus[column]
	if !ok {
		return model.KanbanTask{}, fmt.Errorf("%w: tasks cannot be moved to %q", ErrInvalidInput, column)
	}
	err := e.mutate(ctx, "kanban.move", func(tx *repository.Tx) (string, error) {
		t, err := tx.Task(taskID)
		if err != nil {
			return "", err
		}
		if t.Status == model.TaskStatusArchived {
			return "", fmt.Errorf("%w: task %s is archived", ErrConflict, taskID)
		}
		if t.IsDerived() {
			if err := e.moveDerived(tx, t, column); err != nil {
				return "", err
			}
		}
		if _, err := tx.UpdateTask(taskID, func(t *model.MaintenanceTask) error {
			t.Status = status
			return nil
		}); err != nil {
			return "", err
		}

		cards := tx.KanbanTasks()
		if kanban.Find(cards, taskID) < 0 {
			cards = kanban.Append(cards, model.KanbanTask{
				ID:     model.DerivedID("kanban", taskID),
				TaskID: taskID,
				Column: column,
			})
		} else if cards, err = kanban.Move(cards, taskID, string(column)); err != nil {
			return "", err
		}
		if err := tx.SetKanbanTasks(cards); err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved task for %s to %s", t.ScheduledDate.Display(), column), nil
	})
	if err != nil {
		return model.KanbanTask{}, err
	}

	var card model.KanbanTask
	e.repo.View(func(tx *repository.Tx) {
		cards := tx.KanbanTasks()
		if i := kanban.Find(cards, taskID); i >= 0 {
			card = cards[i]
		}
	})
	return card, nil
}

func (e *Engine) moveDerived(tx *repository.Tx, t model.MaintenanceTask, column model.TaskColumn) error {
	_, err := tx.UpdateContract(t.ContractID, func(c *model.Contract) error {
		i := c.Period(*t.MaintenancePeriodID)
		if i < 0 {
			return fmt.Errorf("%w: maintenance period %s", ErrNotFound, *t.MaintenancePeriodID)
		}
		p := &c.MaintenancePeriods[i]
		target, ok := columnPeriodStatus[column]
		if !ok {
			if p.Status.Rank() >= model.PeriodStatusInProgress.Rank() {
				return fmt.Errorf("%w: maintenance period is already %s", ErrConflict, p.Status)
			}
			return nil
		}
		if p.Status == model.PeriodStatusCompleted && target != model.PeriodStatusCompleted {
			return fmt.Errorf("%w: maintenance period is already completed", ErrConflict)
		}
		if target.Rank() > p.Status.Rank() {
			p.Status = target
		}
		return nil
	})
	return err
}
