package heatmap

import "time"

// DayKeyFormat is the calendar-day key used throughout: "YYYY-MM-DD".
const DayKeyFormat = "2006-01-02"

// DefaultWeeks is the display window for fixed-size widgets.
const DefaultWeeks = 13

// Cell is one unit of the heatmap grid. Date is nil for cells after the
// reference day or before the earliest tracked day; such cells render as
// empty.
type Cell struct {
	DayOfWeek int        `json:"day_of_week"` // 0 = Sunday
	Week      int        `json:"week"`
	Date      *time.Time `json:"date,omitempty"`
}

// Key returns the calendar-day key of the cell, or "" for an empty cell.
func (c Cell) Key() string {
	if c.Date == nil {
		return ""
	}
	return c.Date.Format(DayKeyFormat)
}

// BuildGrid computes the weeks*7 cell layout ending at the Saturday of the
// reference day's week. Cells are emitted row-major: all weeks for Sunday,
// then all weeks for Monday, and so on — renderers depend on this order.
func BuildGrid(weeks int, reference time.Time) []Cell {
	ref := truncateToDay(reference)
	dow := int(ref.Weekday()) // Sunday = 0

	end := ref.AddDate(0, 0, 6-dow)
	start := end.AddDate(0, 0, -(weeks*7 - 1))

	cells := make([]Cell, 0, weeks*7)
	for dayOfWeek := 0; dayOfWeek < 7; dayOfWeek++ {
		for week := 0; week < weeks; week++ {
			date := start.AddDate(0, 0, week*7+dayOfWeek)

			cell := Cell{DayOfWeek: dayOfWeek, Week: week}
			if !date.After(ref) {
				d := date
				cell.Date = &d
			}
			cells = append(cells, cell)
		}
	}

	return cells
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
