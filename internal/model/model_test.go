package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := map[string]Date{
		"2025-01-31":           NewDate(2025, time.January, 31),
		"2025-01-31T10:20:00Z": NewDate(2025, time.January, 31),
		"31.01.2025":           NewDate(2025, time.January, 31),
		" 2025-02-01 ":         NewDate(2025, time.February, 1),
	}
	for raw, want := range cases {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
	}

	_, err := ParseDate("31/01/2025")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	type holder struct {
		Day      Date  `json:"day"`
		Optional *Date `json:"optional,omitempty"`
	}
	in := holder{Day: NewDate(2025, time.March, 9)}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2025-03-09"}`, string(data))

	var out holder
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	var zero holder
	require.NoError(t, json.Unmarshal([]byte(`{"day":null}`), &zero))
	assert.True(t, zero.Day.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"day":"tomorrow"}`), &out))
	assert.Error(t, json.Unmarshal([]byte(`{"day":42}`), &out))
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2025, time.January, 30)
	assert.Equal(t, NewDate(2025, time.February, 6), d.AddDays(7))
	assert.Equal(t, 7, d.DaysUntil(d.AddDays(7)))
	assert.Equal(t, -1, d.Compare(d.AddDays(1)))
	assert.Equal(t, "30.01.2025", d.Display())
	assert.Equal(t, "—", Date{}.Display())
}

func TestEffectiveRange(t *testing.T) {
	start := NewDate(2025, time.January, 10)
	p := MaintenancePeriod{
		StartDate: NewDate(2025, time.January, 1),
		EndDate:   NewDate(2025, time.January, 31),
	}
	assert.Equal(t, p.StartDate, p.EffectiveStart())
	assert.Equal(t, p.EndDate, p.EffectiveEnd())

	p.AdjustedStartDate = &start
	assert.Equal(t, start, p.EffectiveStart())
	assert.Equal(t, p.EndDate, p.EffectiveEnd())
	assert.True(t, p.IsAdjusted())
}

func TestPeriodStatusRank(t *testing.T) {
	assert.Less(t, PeriodStatusPlanned.Rank(), PeriodStatusAdjusted.Rank())
	assert.Less(t, PeriodStatusAdjusted.Rank(), PeriodStatusInProgress.Rank())
	assert.Less(t, PeriodStatusInProgress.Rank(), PeriodStatusCompleted.Rank())
	assert.False(t, PeriodStatus("done").Valid())
}

func TestDatasetCloneIsIndependent(t *testing.T) {
	value := 1200.5
	ds := EmptyDataset()
	ds.Contracts = append(ds.Contracts, Contract{
		ID:                  "c1",
		AssignedEngineerIDs: []string{"e1"},
		ContractValue:       &value,
		MaintenancePeriods: []MaintenancePeriod{{
			ID:          "p1",
			Departments: []Department{DepartmentKOND},
		}},
	})

	clone := ds.Clone()
	clone.Contracts[0].AssignedEngineerIDs[0] = "e2"
	clone.Contracts[0].MaintenancePeriods[0].Departments[0] = DepartmentDGU
	*clone.Contracts[0].ContractValue = 1

	assert.Equal(t, "e1", ds.Contracts[0].AssignedEngineerIDs[0])
	assert.Equal(t, DepartmentKOND, ds.Contracts[0].MaintenancePeriods[0].Departments[0])
	assert.Equal(t, 1200.5, *ds.Contracts[0].ContractValue)
}

func TestCollectionKeys(t *testing.T) {
	assert.Equal(t, "kanban", CollectionKanbanTasks.StorageKey())
	assert.Equal(t, "contract_kanban", CollectionContractKanbanTasks.StorageKey())
	assert.Equal(t, "maintenance_reports", CollectionReports.StorageKey())
	assert.Equal(t, "contracts", CollectionContracts.StorageKey())

	c, err := ParseCollection("contract_kanban")
	require.NoError(t, err)
	assert.Equal(t, CollectionContractKanbanTasks, c)
	_, err = ParseCollection("invoices")
	assert.Error(t, err)
}

func TestColumnMapping(t *testing.T) {
	col, ok := ColumnForContractStatus(ContractStatusFinalWorks)
	require.True(t, ok)
	assert.Equal(t, ContractColumnFinalWorks, col)
	_, ok = ColumnForContractStatus(ContractStatusArchived)
	assert.False(t, ok)

	_, ok = ColumnForTaskStatus(TaskStatusArchived)
	assert.False(t, ok)
}
