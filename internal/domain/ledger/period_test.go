package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriod(t *testing.T) {
	asOf := time.Date(2024, time.February, 14, 16, 30, 0, 0, time.UTC)

	t.Run("monthly covers the calendar month", func(t *testing.T) {
		p, err := ResolvePeriod(GranularityMonthly, asOf, nil)
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.February, 1), p.Start)
		assert.Equal(t, date(2024, time.February, 29), p.End)
		assert.Equal(t, date(2024, time.March, 1), p.EndExclusive())
	})

	t.Run("yearly covers the calendar year", func(t *testing.T) {
		p, err := ResolvePeriod(GranularityYearly, asOf, nil)
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.January, 1), p.Start)
		assert.Equal(t, date(2024, time.December, 31), p.End)
	})

	t.Run("all time opens at the earliest order", func(t *testing.T) {
		earliest := time.Date(2022, time.July, 3, 9, 0, 0, 0, time.UTC)
		p, err := ResolvePeriod(GranularityAllTime, asOf, &earliest)
		require.NoError(t, err)
		assert.Equal(t, date(2022, time.July, 3), p.Start)
		assert.Equal(t, date(2024, time.February, 14), p.End)
		assert.True(t, p.IsAllTime())
	})

	t.Run("all time without orders collapses to asOf", func(t *testing.T) {
		p, err := ResolvePeriod(GranularityAllTime, asOf, nil)
		require.NoError(t, err)
		assert.Equal(t, p.End, p.Start)
	})

	t.Run("unknown granularity", func(t *testing.T) {
		_, err := ResolvePeriod("weekly", asOf, nil)
		assert.Error(t, err)
	})
}

func TestPeriod_Key(t *testing.T) {
	asOf := date(2024, time.March, 20)

	monthly, _ := ResolvePeriod(GranularityMonthly, asOf, nil)
	assert.Equal(t, PeriodKey{Type: PeriodTypeMonthly, Start: date(2024, time.March, 1), End: date(2024, time.March, 31)}, monthly.Key(asOf))

	yearly, _ := ResolvePeriod(GranularityYearly, asOf, nil)
	assert.Equal(t, PeriodTypeYearly, yearly.Key(asOf).Type)

	allTime, _ := ResolvePeriod(GranularityAllTime, asOf, nil)
	tx := time.Date(2024, time.March, 20, 23, 10, 0, 0, time.UTC)
	key := allTime.Key(tx)
	assert.Equal(t, PeriodTypeCustom, key.Type)
	assert.Equal(t, date(2024, time.March, 20), key.Start)
	assert.Equal(t, key.Start, key.End)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, GranularityMonthly, g)

	g, err = ParseGranularity("all_time")
	require.NoError(t, err)
	assert.Equal(t, GranularityAllTime, g)

	_, err = ParseGranularity("daily")
	assert.Error(t, err)
}
