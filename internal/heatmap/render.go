package heatmap

import (
	"strings"
	"time"

	"github.com/fatih/color"
)

var levelColors = map[Level]*color.Color{
	LevelNone:       color.New(color.FgHiBlack),
	LevelLight:      color.New(color.FgYellow),
	LevelModerate:   color.New(color.FgHiYellow),
	LevelActive:     color.New(color.FgRed),
	LevelVeryActive: color.New(color.FgHiRed),
}

var dayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Render draws the heatmap as terminal text: a month header, one row per
// weekday, filled cells colored by level.
func Render(levels map[string]int, weeks int, reference time.Time) string {
	cells := BuildGrid(weeks, reference)

	var b strings.Builder
	b.WriteString("    " + monthHeader(cells, weeks) + "\n")

	for dayOfWeek := 0; dayOfWeek < 7; dayOfWeek++ {
		b.WriteString(dayLabels[dayOfWeek] + " ")
		for week := 0; week < weeks; week++ {
			cell := cells[dayOfWeek*weeks+week]
			if cell.Date == nil {
				b.WriteString("  ")
				continue
			}
			level := Level(levels[cell.Key()])
			b.WriteString(levelColors[level].Sprint("■") + " ")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// monthHeader emits a month abbreviation over each week column where the
// month changes, aligned to the two-character cell pitch.
func monthHeader(cells []Cell, weeks int) string {
	columns := make([]string, weeks)
	prev := time.Month(0)

	for week := 0; week < weeks; week++ {
		// The Sunday row holds the first date of each week column.
		cell := cells[week]
		date := cell.Date
		if date == nil {
			continue
		}
		if date.Month() != prev {
			columns[week] = date.Format("Jan")
			prev = date.Month()
		}
	}

	var b strings.Builder
	col := 0
	for week := 0; week < weeks; week++ {
		want := week * 2
		if columns[week] == "" || col > want {
			continue
		}
		b.WriteString(strings.Repeat(" ", want-col))
		b.WriteString(columns[week])
		col = want + len(columns[week])
	}

	return b.String()
}
