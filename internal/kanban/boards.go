package kanban

import "github.com/evalex7/e-plan/internal/model"

func taskLanes() []string {
	columns := model.TaskColumns()
	lanes := make([]string, len(columns))
	for i, c := range columns {
		lanes[i] = string(c)
	}
	return lanes
}

func contractLanes() []string {
	columns := model.ContractColumns()
	lanes := make([]string, len(columns))
	for i, c := range columns {
		lanes[i] = string(c)
	}
	return lanes
}

// SyncTaskBoard gives every task with a board column exactly one card in the
// column its status maps to. Archived tasks leave the board.
func SyncTaskBoard(cards []model.KanbanTask, tasks []model.MaintenanceTask) []model.KanbanTask {
	want := make([]Placement, 0, len(tasks))
	for _, t := range tasks {
		if column, ok := model.ColumnForTaskStatus(t.Status); ok {
			want = append(want, Placement{Ref: t.ID, Lane: string(column)})
		}
	}
	return Sync(cards, taskLanes(), want, func(ref, lane string) model.KanbanTask {
		return model.KanbanTask{
			ID:     model.DerivedID("kanban", ref),
			TaskID: ref,
			Column: model.TaskColumn(lane),
		}
	})
}

// SyncContractBoard places every non-archived contract in the column of its
// status.
func SyncContractBoard(cards []model.ContractKanbanTask, contracts []model.Contract) []model.ContractKanbanTask {
	want := make([]Placement, 0, len(contracts))
	for _, c := range contracts {
		if column, ok := model.ColumnForContractStatus(c.Status); ok {
			want = append(want, Placement{Ref: c.ID, Lane: string(column)})
		}
	}
	return Sync(cards, contractLanes(), want, func(ref, lane string) model.ContractKanbanTask {
		return model.ContractKanbanTask{
			ID:         model.DerivedID("contract_kanban", ref),
			ContractID: ref,
			Column:     model.ContractColumn(lane),
		}
	})
}
