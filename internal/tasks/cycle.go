package tasks

import (
	"strings"

	"github.com/syariahos/syariahos-api/internal/models"
)

// CycleOneTime is the API value for tasks that never reset. It is stored as NULL.
const CycleOneTime = "one-time"

// Cycles lists the recurring cycles in sweep order.
var Cycles = []models.ResetCycle{
	models.ResetCycleDaily,
	models.ResetCycleWeekly,
	models.ResetCycleMonthly,
	models.ResetCycleYearly,
}

// thresholdDays is the elapsed-day policy per cycle. Months are 30 days and
// years are 365 days, not calendar boundaries.
var thresholdDays = map[models.ResetCycle]int{
	models.ResetCycleDaily:   1,
	models.ResetCycleWeekly:  7,
	models.ResetCycleMonthly: 30,
	models.ResetCycleYearly:  365,
}

// ThresholdDays returns the elapsed-day threshold for cycle.
func ThresholdDays(cycle models.ResetCycle) (int, bool) {
	days, ok := thresholdDays[cycle]
	return days, ok
}

// ParseCycle maps an API cycle value to its stored form. Empty and
// "one-time" yield nil.
func ParseCycle(raw string) (*models.ResetCycle, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" || value == CycleOneTime {
		return nil, nil
	}
	cycle := models.ResetCycle(value)
	if _, ok := thresholdDays[cycle]; !ok {
		return nil, ErrInvalidCycle
	}
	return &cycle, nil
}

// CycleLabel returns the API value for a stored cycle.
func CycleLabel(cycle *models.ResetCycle) string {
	if cycle == nil {
		return CycleOneTime
	}
	return string(*cycle)
}

// CycleValues lists every accepted API cycle value.
func CycleValues() []string {
	out := []string{CycleOneTime}
	for _, cycle := range Cycles {
		out = append(out, string(cycle))
	}
	return out
}
