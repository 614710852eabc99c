// Package layout computes the per-cell geometry of the week grid: which
// activities belong to an (day, hour) cell and where inside the cell each
// one sits.
package layout

import (
	"time"

	"weekplan/internal/model"
	"weekplan/internal/timewin"
)

// Visible hour range of the grid, 06:00 through the 23:00 slot.
const (
	DefaultStartHour = 6
	DefaultEndHour   = 23
)

// Placement is the derived geometry of an activity inside its start cell,
// expressed as fractions of one hour-cell's height. HeightFraction is
// deliberately unclamped: a 3-hour activity reports 3.0 and visually
// overflows the two cells below its start cell. That, combined with
// single-cell assignment, is how multi-hour spans render without being
// placed twice.
type Placement struct {
	TopOffsetFraction float64 `json:"top_offset_fraction"`
	HeightFraction    float64 `json:"height_fraction"`
}

// Place computes the placement of an activity within its start cell.
func Place(a model.Activity) Placement {
	minutesIntoHour := float64(a.Start.Minute()) + float64(a.Start.Second())/60
	return Placement{
		TopOffsetFraction: minutesIntoHour / 60,
		HeightFraction:    a.End.Sub(a.Start).Minutes() / 60,
	}
}

// CellActivities selects the activities that start in cell (day, hour):
// start's calendar day equals day and start's hour-of-day equals hour.
// Input order is preserved. Every activity belongs to exactly one cell
// regardless of its duration.
func CellActivities(day time.Time, hour int, acts []model.Activity) []model.Activity {
	var out []model.Activity
	for _, act := range acts {
		if act.Start.Hour() == hour && timewin.SameDay(day, act.Start) {
			out = append(out, act)
		}
	}
	return out
}

// PlacedActivity pairs an activity with its cell geometry.
type PlacedActivity struct {
	Activity  model.Activity `json:"activity"`
	Placement Placement      `json:"placement"`
}

// Cell is one (day, hour) grid unit. Activities sharing a cell are not
// staggered horizontally here; the presentation layer stacks them.
type Cell struct {
	Hour       int              `json:"hour"`
	Activities []PlacedActivity `json:"activities,omitempty"`
}

// DayColumn is one day of the grid with its hour cells.
type DayColumn struct {
	Date  time.Time `json:"date"`
	Today bool      `json:"today"`
	Cells []Cell    `json:"cells"`
}

// Grid is the full week view: 7 day columns over the visible hour range.
type Grid struct {
	StartHour int         `json:"start_hour"`
	EndHour   int         `json:"end_hour"`
	Days      []DayColumn `json:"days"`
}

// Build assembles the week grid for the window over [startHour, endHour].
// now is used only to flag the current day. Out-of-range hour bounds fall
// back to the defaults.
func Build(w timewin.Window, startHour, endHour int, acts []model.Activity, now time.Time) Grid {
	if startHour < 0 || startHour > 23 || endHour < startHour || endHour > 23 {
		startHour, endHour = DefaultStartHour, DefaultEndHour
	}

	g := Grid{StartHour: startHour, EndHour: endHour}
	for day := range w.Days() {
		col := DayColumn{
			Date:  day,
			Today: timewin.SameDay(day, now),
			Cells: make([]Cell, 0, endHour-startHour+1),
		}
		for hour := startHour; hour <= endHour; hour++ {
			cell := Cell{Hour: hour}
			for _, act := range CellActivities(day, hour, acts) {
				cell.Activities = append(cell.Activities, PlacedActivity{
					Activity:  act,
					Placement: Place(act),
				})
			}
			col.Cells = append(col.Cells, cell)
		}
		g.Days = append(g.Days, col)
	}
	return g
}
