package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/pricing"
)

var rates = domain.Pricing{WeekdayPriceCents: 100, WeekendPriceCents: 150}

// 2026-01-05 is a Monday.
func day(d int, hour int) time.Time {
	return time.Date(2026, time.January, d, hour, 0, 0, 0, time.UTC)
}

func TestQuoteSingleDay(t *testing.T) {
	total, err := pricing.Quote(day(5, 10), day(5, 12), rates)
	require.NoError(t, err)
	assert.Equal(t, int32(100), total)

	// A weekend day charges the weekend rate. Jan 10 is a Saturday.
	total, err = pricing.Quote(day(10, 10), day(10, 12), rates)
	require.NoError(t, err)
	assert.Equal(t, int32(150), total)
}

func TestQuoteWeekdaySpan(t *testing.T) {
	// Monday through Friday inclusive: five weekday rates.
	total, err := pricing.Quote(day(5, 9), day(9, 18), rates)
	require.NoError(t, err)
	assert.Equal(t, int32(500), total)
}

func TestQuoteSpansWeekend(t *testing.T) {
	// Friday through Monday inclusive: two weekday days plus Sat and Sun.
	total, err := pricing.Quote(day(9, 9), day(12, 9), rates)
	require.NoError(t, err)
	assert.Equal(t, int32(2*100+2*150), total)
}

func TestQuoteCrossesMidnight(t *testing.T) {
	// 23:00 Monday to 01:00 Tuesday touches two calendar days.
	total, err := pricing.Quote(day(5, 23), day(6, 1), rates)
	require.NoError(t, err)
	assert.Equal(t, int32(200), total)
}

func TestQuoteIsDeterministic(t *testing.T) {
	a, err := pricing.Quote(day(5, 9), day(12, 9), rates)
	require.NoError(t, err)
	b, err := pricing.Quote(day(5, 9), day(12, 9), rates)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestQuoteRejectsInvalidRates(t *testing.T) {
	_, err := pricing.Quote(day(5, 9), day(6, 9), domain.Pricing{WeekdayPriceCents: 0, WeekendPriceCents: 150})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = pricing.Quote(day(5, 9), day(6, 9), domain.Pricing{WeekdayPriceCents: 200, WeekendPriceCents: 150})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestQuoteRejectsReversedDates(t *testing.T) {
	_, err := pricing.Quote(day(9, 9), day(5, 9), rates)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
