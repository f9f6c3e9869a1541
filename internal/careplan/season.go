package careplan

import (
	"math"
	"time"

	"pflanzen-manager/internal/model"
)

// AdjustInterval applies the seasonal care policy to a base interval and
// returns the adjusted value in the same unit. Watering speeds up in the warm
// months (May-August, x0.7 rounded down, never below 1) and both watering and
// fertilizing slow down over the dormant months (November-February, x1.3
// rounded up). The policy is a heuristic, not a botanical model.
func AdjustInterval(base int, taskType model.TaskType, now time.Time, seasonal bool) int {
	if !seasonal {
		return base
	}

	month := now.Month()
	switch taskType {
	case model.TaskWatering:
		if month >= time.May && month <= time.August {
			adjusted := int(math.Floor(float64(base) * 0.7))
			if adjusted < 1 {
				adjusted = 1
			}
			return adjusted
		}
		if isDormant(month) {
			return int(math.Ceil(float64(base) * 1.3))
		}
	case model.TaskFertilizing:
		if isDormant(month) {
			return int(math.Ceil(float64(base) * 1.3))
		}
	case model.TaskRepotting, model.TaskCleaning, model.TaskPhoto:
		// No seasonal behavior for these types.
	}
	return base
}

func isDormant(m time.Month) bool {
	return m == time.November || m == time.December || m == time.January || m == time.February
}
