package schedule

import "github.com/evalex7/e-plan/internal/model"

type NextStatus string

const (
	NextStatusOverdue  NextStatus = "overdue"
	NextStatusDue      NextStatus = "due"
	NextStatusUpcoming NextStatus = "upcoming"
	NextStatusNone     NextStatus = "none"
)

// NextMaintenance describes the nearest unfinished maintenance period of a contract.
type NextMaintenance struct {
	Date     model.Date `json:"date"`
	Start    model.Date `json:"start"`
	Display  string     `json:"display"`
	Status   NextStatus `json:"status"`
	PeriodID string     `json:"periodId,omitempty"`
	DaysLeft int        `json:"daysLeft"`
}

// Next picks the period with the earliest effective end that is not
// completed and classifies that deadline against today. It never modifies
// the contract.
func Next(c model.Contract, today model.Date, windowDays int) NextMaintenance {
	var (
		best  model.MaintenancePeriod
		found bool
	)
	for _, p := range c.MaintenancePeriods {
		if p.Status == model.PeriodStatusCompleted {
			continue
		}
		if !found || p.EffectiveEnd().Before(best.EffectiveEnd()) {
			best, found = p, true
		}
	}
	if !found {
		return NextMaintenance{Display: model.Date{}.Display(), Status: NextStatusNone}
	}

	deadline := best.EffectiveEnd()
	result := NextMaintenance{
		Date:     deadline,
		Start:    best.EffectiveStart(),
		Display:  deadline.Display(),
		PeriodID: best.ID,
		DaysLeft: today.DaysUntil(deadline),
	}
	switch {
	case deadline.Before(today):
		result.Status = NextStatusOverdue
	case result.DaysLeft <= windowDays:
		result.Status = NextStatusDue
	default:
		result.Status = NextStatusUpcoming
	}
	return result
}
