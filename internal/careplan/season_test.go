package careplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pflanzen-manager/internal/model"
)

func monthDate(m time.Month) time.Time {
	return time.Date(2025, m, 15, 12, 0, 0, 0, time.UTC)
}

func TestAdjustIntervalSummerWatering(t *testing.T) {
	// floor(10 * 0.7) = 7
	assert.Equal(t, 7, AdjustInterval(10, model.TaskWatering, monthDate(time.June), true))

	for _, m := range []time.Month{time.May, time.June, time.July, time.August} {
		assert.Equal(t, 7, AdjustInterval(10, model.TaskWatering, monthDate(m), true), m.String())
	}
}

func TestAdjustIntervalWinterSlowdown(t *testing.T) {
	// ceil(10 * 1.3) = 13
	for _, m := range []time.Month{time.November, time.December, time.January, time.February} {
		assert.Equal(t, 13, AdjustInterval(10, model.TaskWatering, monthDate(m), true), m.String())
		assert.Equal(t, 13, AdjustInterval(10, model.TaskFertilizing, monthDate(m), true), m.String())
	}

	// Fertilizing is untouched in summer.
	assert.Equal(t, 10, AdjustInterval(10, model.TaskFertilizing, monthDate(time.June), true))
}

func TestAdjustIntervalShorteningClampsToOne(t *testing.T) {
	// floor(1 * 0.7) = 0 must clamp to 1: no same-day degenerate cadence.
	assert.Equal(t, 1, AdjustInterval(1, model.TaskWatering, monthDate(time.July), true))
}

func TestAdjustIntervalNeutralMonths(t *testing.T) {
	for _, m := range []time.Month{time.March, time.April, time.September, time.October} {
		assert.Equal(t, 10, AdjustInterval(10, model.TaskWatering, monthDate(m), true), m.String())
		assert.Equal(t, 10, AdjustInterval(10, model.TaskFertilizing, monthDate(m), true), m.String())
	}
}

func TestAdjustIntervalDisabled(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		for _, typ := range []model.TaskType{model.TaskWatering, model.TaskFertilizing, model.TaskCleaning, model.TaskPhoto} {
			assert.Equal(t, 9, AdjustInterval(9, typ, monthDate(m), false))
		}
	}
}

func TestAdjustIntervalOtherTypesUnaffected(t *testing.T) {
	for _, typ := range []model.TaskType{model.TaskRepotting, model.TaskCleaning, model.TaskPhoto, model.TaskType("pruning")} {
		assert.Equal(t, 10, AdjustInterval(10, typ, monthDate(time.June), true))
		assert.Equal(t, 10, AdjustInterval(10, typ, monthDate(time.December), true))
	}
}

func TestAdjustIntervalNeverBelowOne(t *testing.T) {
	for base := 1; base <= 30; base++ {
		for m := time.January; m <= time.December; m++ {
			got := AdjustInterval(base, model.TaskWatering, monthDate(m), true)
			assert.GreaterOrEqual(t, got, 1)
		}
	}
}
