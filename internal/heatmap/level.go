package heatmap

import "github.com/mfeltz/heatsync/internal/strava"

// Level is a per-day intensity bucket, 0 (rest) through 4 (very active).
type Level int

const (
	LevelNone Level = iota
	LevelLight
	LevelModerate
	LevelActive
	LevelVeryActive
)

// LevelFor maps accumulated daily minutes to an intensity level.
func LevelFor(totalMinutes int) Level {
	switch {
	case totalMinutes <= 0:
		return LevelNone
	case totalMinutes < 30:
		return LevelLight
	case totalMinutes < 60:
		return LevelModerate
	case totalMinutes < 90:
		return LevelActive
	default:
		return LevelVeryActive
	}
}

// Aggregate groups activities by the calendar-day prefix of their local
// start time, sums whole moving minutes per day, and classifies each day.
// The provider's local-time string is used as-is; no timezone conversion.
func Aggregate(activities []strava.Activity) map[string]int {
	minutesByDay := make(map[string]int)

	for _, activity := range activities {
		if len(activity.StartDateLocal) < 10 {
			continue
		}
		day := activity.StartDateLocal[:10]
		minutesByDay[day] += activity.MovingTime / 60
	}

	levels := make(map[string]int, len(minutesByDay))
	for day, minutes := range minutesByDay {
		levels[day] = int(LevelFor(minutes))
	}

	return levels
}
