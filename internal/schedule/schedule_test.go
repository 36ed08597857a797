package schedule_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalex7/e-plan/internal/kanban"
	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/repository"
	"github.com/evalex7/e-plan/internal/schedule"
	"github.com/evalex7/e-plan/internal/storage"
)

func date(raw string) model.Date {
	d, err := model.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func newRepo(t *testing.T) (*repository.Repository, model.Contract) {
	t.Helper()
	repo := repository.New(storage.NewMemoryStore(), zerolog.Nop())
	var contract model.Contract
	_, err := repo.Apply(func(tx *repository.Tx) error {
		object, err := tx.CreateObject(model.ServiceObject{ID: "o1", Name: "Бізнес-центр"})
		if err != nil {
			return err
		}
		if _, err := tx.CreateEngineer(model.ServiceEngineer{ID: "e1", Name: "Іваненко", Specialization: []string{"ДГУ"}}); err != nil {
			return err
		}
		if _, err := tx.CreateEngineer(model.ServiceEngineer{ID: "e2", Name: "Коваль", Specialization: []string{"КОНД", "ДБЖ"}}); err != nil {
			return err
		}
		contract, err = tx.CreateContract(model.Contract{
			ID:                  "C1",
			ContractNumber:      "123",
			ObjectID:            object.ID,
			ClientName:          "ТОВ Клієнт",
			StartDate:           date("2025-01-01"),
			EndDate:             date("2025-12-31"),
			AssignedEngineerIDs: []string{"e1", "e2"},
			MaintenancePeriods: []model.MaintenancePeriod{{
				ID:          "P1",
				StartDate:   date("2025-01-01"),
				EndDate:     date("2025-01-31"),
				Departments: []model.Department{model.DepartmentKOND},
			}},
		})
		return err
	})
	require.NoError(t, err)
	return repo, contract
}

func regenerate(t *testing.T, repo *repository.Repository, today model.Date) schedule.Result {
	t.Helper()
	var result schedule.Result
	_, err := repo.Apply(func(tx *repository.Tx) error {
		var err error
		result, err = schedule.Regenerate(tx, today, schedule.DefaultOptions())
		return err
	})
	require.NoError(t, err)
	return result
}

func TestRegenerateCreatesOneTaskPerPeriod(t *testing.T) {
	repo, _ := newRepo(t)

	result := regenerate(t, repo, date("2024-12-20"))
	require.Len(t, result.Tasks, 1)
	task := result.Tasks[0]
	assert.Equal(t, schedule.TaskID("C1", "P1"), task.ID)
	assert.Equal(t, date("2025-01-01"), task.ScheduledDate)
	assert.Equal(t, "o1", task.ObjectID)
	assert.Equal(t, "e2", task.EngineerID)
	assert.Equal(t, 2.0, task.Duration)
	assert.Equal(t, model.TaskStatusPlanned, task.Status)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.KanbanTasks, 1)
	assert.Equal(t, model.TaskColumnPlanned, result.KanbanTasks[0].Column)

	before := repo.Snapshot()
	again := regenerate(t, repo, date("2024-12-20"))
	assert.Zero(t, again.Created+again.Updated+again.Removed)
	assert.Equal(t, before, repo.Snapshot())
}

func TestRegenerateFollowsAdjustment(t *testing.T) {
	repo, _ := newRepo(t)
	regenerate(t, repo, date("2024-12-20"))

	_, err := repo.Apply(func(tx *repository.Tx) error {
		_, err := tx.UpdateContract("C1", func(c *model.Contract) error {
			start, end := date("2025-01-10"), date("2025-02-05")
			c.MaintenancePeriods[0].AdjustedStartDate = &start
			c.MaintenancePeriods[0].AdjustedEndDate = &end
			c.MaintenancePeriods[0].Status = model.PeriodStatusAdjusted
			return nil
		})
		return err
	})
	require.NoError(t, err)

	result := regenerate(t, repo, date("2024-12-20"))
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, date("2025-01-10"), result.Tasks[0].ScheduledDate)
	assert.Equal(t, 1, result.Updated)
	assert.Zero(t, result.Created)
}

func TestRegenerateStatuses(t *testing.T) {
	repo, _ := newRepo(t)

	result := regenerate(t, repo, date("2025-02-10"))
	assert.Equal(t, model.TaskStatusOverdue, result.Tasks[0].Status)
	assert.Equal(t, model.TaskColumnOverdue, result.KanbanTasks[0].Column)

	_, err := repo.Apply(func(tx *repository.Tx) error {
		_, err := tx.UpdateContract("C1", func(c *model.Contract) error {
			c.MaintenancePeriods[0].Status = model.PeriodStatusCompleted
			return nil
		})
		return err
	})
	require.NoError(t, err)
	result = regenerate(t, repo, date("2025-02-10"))
	assert.Equal(t, model.TaskStatusCompleted, result.Tasks[0].Status)
	assert.Equal(t, model.TaskColumnCompleted, result.KanbanTasks[0].Column)
}

func TestRegenerateRemovesArchivedAndOrphans(t *testing.T) {
	repo, _ := newRepo(t)
	regenerate(t, repo, date("2024-12-20"))

	_, err := repo.Apply(func(tx *repository.Tx) error {
		periodID := "missing"
		if _, err := tx.CreateTask(model.MaintenanceTask{
			ContractID: "C1", ScheduledDate: date("2025-03-01"), Duration: 1, MaintenancePeriodID: &periodID,
		}); err != nil {
			return err
		}
		_, err := tx.CreateTask(model.MaintenanceTask{
			ID: "adhoc", ContractID: "C1", ScheduledDate: date("2025-03-01"), Duration: 1, Type: model.TaskTypeRepair,
		})
		return err
	})
	require.NoError(t, err)

	result := regenerate(t, repo, date("2024-12-20"))
	assert.Equal(t, 1, result.Removed)
	assert.Len(t, result.Tasks, 2)

	_, err = repo.Apply(func(tx *repository.Tx) error {
		_, err := tx.UpdateContract("C1", func(c *model.Contract) error {
			c.Status = model.ContractStatusArchived
			return nil
		})
		return err
	})
	require.NoError(t, err)

	result = regenerate(t, repo, date("2024-12-20"))
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "adhoc", result.Tasks[0].ID)
	assert.Empty(t, repo.Snapshot().ContractKanbanTasks)
	assert.NoError(t, kanban.Validate(result.KanbanTasks))
}

func TestRegenerateKeepsManualEngineer(t *testing.T) {
	repo, _ := newRepo(t)
	regenerate(t, repo, date("2024-12-20"))

	_, err := repo.Apply(func(tx *repository.Tx) error {
		_, err := tx.UpdateTask(schedule.TaskID("C1", "P1"), func(task *model.MaintenanceTask) error {
			task.EngineerID = "e1"
			return nil
		})
		return err
	})
	require.NoError(t, err)

	result := regenerate(t, repo, date("2024-12-20"))
	assert.Equal(t, "e1", result.Tasks[0].EngineerID)
}

func TestNext(t *testing.T) {
	contract := model.Contract{MaintenancePeriods: []model.MaintenancePeriod{
		{ID: "done", StartDate: date("2025-01-01"), EndDate: date("2025-01-10"), Status: model.PeriodStatusCompleted},
		{ID: "late", StartDate: date("2025-03-01"), EndDate: date("2025-03-20"), Status: model.PeriodStatusPlanned},
		{ID: "soon", StartDate: date("2025-02-01"), EndDate: date("2025-02-28"), Status: model.PeriodStatusPlanned},
	}}

	tests := []struct {
		name   string
		today  string
		status schedule.NextStatus
	}{
		{"upcoming", "2025-02-01", schedule.NextStatusUpcoming},
		{"due", "2025-02-21", schedule.NextStatusDue},
		{"due on deadline", "2025-02-28", schedule.NextStatusDue},
		{"overdue", "2025-03-01", schedule.NextStatusOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := schedule.Next(contract, date(tt.today), 7)
			assert.Equal(t, tt.status, next.Status)
			assert.Equal(t, "soon", next.PeriodID)
			assert.Equal(t, "28.02.2025", next.Display)
		})
	}

	none := schedule.Next(model.Contract{}, date("2025-01-01"), 7)
	assert.Equal(t, schedule.NextStatusNone, none.Status)
	assert.True(t, none.Date.IsZero())
}

func TestToday(t *testing.T) {
	kyiv := time.FixedZone("EET", 2*60*60)
	assert.Equal(t, date("2025-05-01"), schedule.Today(time.Date(2025, 5, 1, 23, 30, 0, 0, kyiv)))
}
