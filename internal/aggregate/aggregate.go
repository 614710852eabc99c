// Package aggregate computes the weekly per-category time totals and the
// derived free-time figure shown in the planner legend.
package aggregate

import (
	"weekplan/internal/model"
	"weekplan/internal/timewin"
)

// DefaultWeeklyBudgetHours is the working-hours budget free time is measured
// against: 17 waking working hours per day (06:00-23:00) across 7 days.
const DefaultWeeklyBudgetHours = 17 * 7

// Totals maps each category, plus free time, to a duration in hours.
type Totals struct {
	Focus  float64 `json:"focus"`
	Tasks  float64 `json:"tasks"`
	Target float64 `json:"target"`
	Other  float64 `json:"other"`
	Free   float64 `json:"free"`
}

// Busy returns the sum of all category totals.
func (t Totals) Busy() float64 {
	return t.Focus + t.Tasks + t.Target + t.Other
}

// ByCategory returns the total for one category.
func (t Totals) ByCategory(c model.Category) float64 {
	switch c {
	case model.CategoryFocus:
		return t.Focus
	case model.CategoryTasks:
		return t.Tasks
	case model.CategoryTarget:
		return t.Target
	default:
		return t.Other
	}
}

// Compute returns the totals for activities whose start day falls inside the
// window, inclusive of the final day. Duration is accumulated in hours into
// the bucket named by the activity's (already normalized) category.
//
// Free time is the capped remainder of the weekly budget: it is never
// negative, even when busy time exceeds the budget. budgetHours <= 0 selects
// DefaultWeeklyBudgetHours.
//
// Compute is a pure function: identical inputs always yield identical
// totals, independent of call order or prior state.
func Compute(w timewin.Window, acts []model.Activity, budgetHours float64) Totals {
	if budgetHours <= 0 {
		budgetHours = DefaultWeeklyBudgetHours
	}

	var t Totals
	for _, act := range acts {
		if !w.ContainsDay(act.Start) {
			continue
		}
		hours := act.Hours()
		switch act.Category {
		case model.CategoryFocus:
			t.Focus += hours
		case model.CategoryTasks:
			t.Tasks += hours
		case model.CategoryTarget:
			t.Target += hours
		default:
			t.Other += hours
		}
	}

	free := budgetHours - t.Busy()
	if free < 0 {
		free = 0
	}
	t.Free = free
	return t
}
