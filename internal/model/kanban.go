package model

type TaskColumn string

const (
	TaskColumnPlanned    TaskColumn = "planned"
	TaskColumnInProgress TaskColumn = "in_progress"
	TaskColumnOverdue    TaskColumn = "overdue"
	TaskColumnCompleted  TaskColumn = "completed"
)

func TaskColumns() []TaskColumn {
	return []TaskColumn{TaskColumnPlanned, TaskColumnInProgress, TaskColumnOverdue, TaskColumnCompleted}
}

func (c TaskColumn) Valid() bool {
	switch c {
	case TaskColumnPlanned, TaskColumnInProgress, TaskColumnOverdue, TaskColumnCompleted:
		return true
	}
	return false
}

// ColumnForTaskStatus reports the board column of a task; archived tasks have none.
func ColumnForTaskStatus(s TaskStatus) (TaskColumn, bool) {
	switch s {
	case TaskStatusPlanned:
		return TaskColumnPlanned, true
	case TaskStatusInProgress:
		return TaskColumnInProgress, true
	case TaskStatusOverdue:
		return TaskColumnOverdue, true
	case TaskStatusCompleted:
		return TaskColumnCompleted, true
	}
	return "", false
}

type ContractColumn string

const (
	ContractColumnActive     ContractColumn = "active"
	ContractColumnFinalWorks ContractColumn = "final_works"
	ContractColumnExtension  ContractColumn = "extension"
	ContractColumnCompleted  ContractColumn = "completed"
)

func ContractColumns() []ContractColumn {
	return []ContractColumn{ContractColumnActive, ContractColumnFinalWorks, ContractColumnExtension, ContractColumnCompleted}
}

func (c ContractColumn) Valid() bool {
	switch c {
	case ContractColumnActive, ContractColumnFinalWorks, ContractColumnExtension, ContractColumnCompleted:
		return true
	}
	return false
}

// Status is the canonical contract status a column stands for.
func (c ContractColumn) Status() ContractStatus { return ContractStatus(c) }

func ColumnForContractStatus(s ContractStatus) (ContractColumn, bool) {
	c := ContractColumn(s)
	return c, c.Valid()
}

type KanbanTask struct {
	ID     string     `json:"id"`
	TaskID string     `json:"taskId"`
	Column TaskColumn `json:"column"`
	Order  int        `json:"order"`
}

func (k KanbanTask) EntityID() string { return k.ID }
func (k KanbanTask) Ref() string      { return k.TaskID }
func (k KanbanTask) Lane() string     { return string(k.Column) }
func (k KanbanTask) Position() int    { return k.Order }

func (k *KanbanTask) Place(lane string, order int) {
	k.Column = TaskColumn(lane)
	k.Order = order
}

type ContractKanbanTask struct {
	ID         string         `json:"id"`
	ContractID string         `json:"contractId"`
	Column     ContractColumn `json:"column"`
	Order      int            `json:"order"`
}

func (k ContractKanbanTask) EntityID() string { return k.ID }
func (k ContractKanbanTask) Ref() string      { return k.ContractID }
func (k ContractKanbanTask) Lane() string     { return string(k.Column) }
func (k ContractKanbanTask) Position() int    { return k.Order }

func (k *ContractKanbanTask) Place(lane string, order int) {
	k.Column = ContractColumn(lane)
	k.Order = order
}
