package service

import (
	"context"
	"fmt"

	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/repository"
)

func (e *Engine) AddObject(ctx context.Context, o model.ServiceObject) (model.ServiceObject, error) {
	var created model.ServiceObject
	err := e.mutate(ctx, "object.add", func(tx *repository.Tx) (string, error) {
		var err error
		if created, err = tx.CreateObject(o); err != nil {
			return "", err
		}
		return fmt.Sprintf("Added object %s", created.Name), nil
	})
	return created, err
}

func (e *Engine) UpdateObject(ctx context.Context, id string, patch ObjectPatch) (model.ServiceObject, error) {
	var updated model.ServiceObject
	err := e.mutate(ctx, "object.update", func(tx *repository.Tx) (string, error) {
		var err error
		updated, err = tx.UpdateObject(id, func(o *model.ServiceObject) error {
			patch.apply(o)
			return nil
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Updated object %s", updated.Name), nil
	})
	return updated, err
}

// RemoveObject fails with ErrConflict while a non-archived contract covers the object.
func (e *Engine) RemoveObject(ctx context.Context, id string) error {
	return e.mutate(ctx, "object.remove", func(tx *repository.Tx) (string, error) {
		o, err := tx.Object(id)
		if err != nil {
			return "", err
		}
		if err := tx.DeleteObject(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed object %s", o.Name), nil
	})
}

func (e *Engine) AddEngineer(ctx context.Context, en model.ServiceEngineer) (model.ServiceEngineer, error) {
	var created model.ServiceEngineer
	err := e.mutate(ctx, "engineer.add", func(tx *repository.Tx) (string, error) {
		var err error
		if created, err = tx.CreateEngineer(en); err != nil {
			return "", err
		}
		return fmt.Sprintf("Added engineer %s", created.Name), nil
	})
	return created, err
}

func (e *Engine) UpdateEngineer(ctx context.Context, id string, patch EngineerPatch) (model.ServiceEngineer, error) {
	var updated model.ServiceEngineer
	err := e.mutate(ctx, "engineer.update", func(tx *repository.Tx) (string, error) {
		var err error
		updated, err = tx.UpdateEngineer(id, func(en *model.ServiceEngineer) error {
			patch.apply(en)
			return nil
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Updated engineer %s", updated.Name), nil
	})
	return updated, err
}

// RemoveEngineer fails with ErrConflict while a non-archived contract assigns
// the engineer.
func (e *Engine) RemoveEngineer(ctx context.Context, id string) error {
	return e.mutate(ctx, "engineer.remove", func(tx *repository.Tx) (string, error) {
		en, err := tx.Engineer(id)
		if err != nil {
			return "", err
		}
		if err := tx.DeleteEngineer(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed engineer %s", en.Name), nil
	})
}
