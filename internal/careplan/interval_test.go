package careplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pflanzen-manager/internal/model"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Interval
		ok   bool
	}{
		{
			name: "single form days",
			text: "Gießen Sie die Pflanze alle 5 Tage.",
			want: Interval{Min: 5, Max: 5, Unit: model.UnitDays},
			ok:   true,
		},
		{
			name: "range form days",
			text: "alle 7-10 Tage gießen",
			want: Interval{Min: 7, Max: 10, Unit: model.UnitDays},
			ok:   true,
		},
		{
			name: "range form weeks",
			text: "Düngen alle 2-4 Wochen im Sommer",
			want: Interval{Min: 2, Max: 4, Unit: model.UnitWeeks},
			ok:   true,
		},
		{
			name: "single form weeks",
			text: "Düngen alle 2 Wochen",
			want: Interval{Min: 2, Max: 2, Unit: model.UnitWeeks},
			ok:   true,
		},
		{
			name: "single form months",
			text: "Umtopfen alle 12 Monate",
			want: Interval{Min: 12, Max: 12, Unit: model.UnitMonths},
			ok:   true,
		},
		{
			name: "bare number form",
			text: "Die Erde sollte nach 3 Tagen wieder trocken sein",
			want: Interval{Min: 3, Max: 3, Unit: model.UnitDays},
			ok:   true,
		},
		{
			name: "case insensitive",
			text: "ALLE 6 TAGE wässern",
			want: Interval{Min: 6, Max: 6, Unit: model.UnitDays},
			ok:   true,
		},
		{
			name: "singular unit",
			text: "alle 1 Monat kontrollieren",
			want: Interval{Min: 1, Max: 1, Unit: model.UnitMonths},
			ok:   true,
		},
		{
			name: "no interval",
			text: "Mäßig gießen, Staunässe vermeiden.",
			ok:   false,
		},
		{
			name: "empty text",
			text: "",
			ok:   false,
		},
		{
			name: "number without unit",
			text: "Die Pflanze ist etwa 3 Jahre alt",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseInterval(tt.text)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseIntervalIsDeterministic(t *testing.T) {
	const text = "alle 7-10 Tage gießen"
	first, ok := ParseInterval(text)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := ParseInterval(text)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 24*time.Hour, Duration(1, model.UnitDays))
	assert.Equal(t, 7*Duration(1, model.UnitDays), Duration(1, model.UnitWeeks))
	assert.Equal(t, 30*Duration(1, model.UnitDays), Duration(1, model.UnitMonths))
	assert.Equal(t, 5*24*time.Hour, Duration(5, model.UnitDays))

	// Unrecognized units already defaulted to days upstream; the converter
	// treats anything else as days too.
	assert.Equal(t, 2*24*time.Hour, Duration(2, model.Unit("fortnights")))
}
