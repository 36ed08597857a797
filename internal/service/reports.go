package service

import (
	"context"
	"fmt"

	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/repository"
)

func (e *Engine) AddReport(ctx context.Context, r model.MaintenanceReport) (model.MaintenanceReport, error) {
	var created model.MaintenanceReport
	err := e.mutate(ctx, "report.add", func(tx *repository.Tx) (string, error) {
		if err := checkReportPeriod(tx, r); err != nil {
			return "", err
		}
		var err error
		if created, err = tx.CreateReport(r); err != nil {
			return "", err
		}
		return fmt.Sprintf("Added %s report for %s", created.Department, created.CompletedDate.Display()), nil
	})
	return created, err
}

func (e *Engine) UpdateReport(ctx context.Context, id string, patch ReportPatch) (model.MaintenanceReport, error) {
	var updated model.MaintenanceReport
	err := e.mutate(ctx, "report.update", func(tx *repository.Tx) (string, error) {
		var err error
		updated, err = tx.UpdateReport(id, func(r *model.MaintenanceReport) error {
			patch.apply(r)
			if patch.MaintenancePeriodID != nil {
				return checkReportPeriod(tx, *r)
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Updated %s report for %s", updated.Department, updated.CompletedDate.Display()), nil
	})
	return updated, err
}

func (e *Engine) RemoveReport(ctx context.Context, id string) error {
	return e.mutate(ctx, "report.remove", func(tx *repository.Tx) (string, error) {
		r, err := tx.Report(id)
		if err != nil {
			return "", err
		}
		if err := tx.DeleteReport(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed %s report for %s", r.Department, r.CompletedDate.Display()), nil
	})
}

func checkReportPeriod(tx *repository.Tx, r model.MaintenanceReport) error {
	if r.MaintenancePeriodID == nil {
		return nil
	}
	c, err := tx.Contract(r.ContractID)
	if err != nil {
		return err
	}
	if c.Period(*r.MaintenancePeriodID) < 0 {
		return fmt.Errorf("%w: maintenance period %s", ErrNotFound, *r.MaintenancePeriodID)
	}
	return nil
}
