package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDurationDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day", date(2024, 6, 1), date(2024, 6, 1), 1},
		{"three days", date(2024, 6, 1), date(2024, 6, 3), 3},
		{"cross month", date(2024, 1, 25), date(2024, 2, 5), 12},
		{"leap february", date(2024, 2, 28), date(2024, 3, 1), 3},
		{"cross year", date(2023, 12, 31), date(2024, 1, 1), 2},
		{"time of day ignored", time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC), time.Date(2024, 6, 2, 0, 1, 0, 0, time.UTC), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DurationDays(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("end before start", func(t *testing.T) {
		_, err := DurationDays(date(2024, 6, 3), date(2024, 6, 1))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("always at least one day", func(t *testing.T) {
		start := date(2024, 1, 1)
		for i := 0; i < 400; i += 7 {
			end := start.AddDate(0, 0, i)
			got, err := DurationDays(start, end)
			require.NoError(t, err)
			assert.Equal(t, i+1, got)
			assert.GreaterOrEqual(t, got, 1)
		}
	})
}

func TestValidateRange(t *testing.T) {
	today := date(2024, 6, 1)

	t.Run("ok", func(t *testing.T) {
		days, err := ValidateRange(date(2024, 6, 1), date(2024, 6, 3), 30, 1, today)
		require.NoError(t, err)
		assert.Equal(t, 3, days)
	})

	t.Run("distinct error kinds", func(t *testing.T) {
		_, err := ValidateRange(date(2024, 6, 5), date(2024, 6, 1), 30, 1, today)
		assert.ErrorIs(t, err, ErrInvalidRange)

		_, err = ValidateRange(date(2024, 6, 1), date(2024, 7, 10), 30, 1, today)
		assert.ErrorIs(t, err, ErrRangeTooLong)

		_, err = ValidateRange(date(2024, 6, 1), date(2024, 6, 2), 30, 3, today)
		assert.ErrorIs(t, err, ErrRangeTooShort)

		_, err = ValidateRange(date(2024, 5, 30), date(2024, 6, 2), 30, 1, today)
		assert.ErrorIs(t, err, ErrStartInPast)
	})

	t.Run("max boundary inclusive", func(t *testing.T) {
		days, err := ValidateRange(date(2024, 6, 1), date(2024, 6, 30), 30, 1, today)
		require.NoError(t, err)
		assert.Equal(t, 30, days)

		_, err = ValidateRange(date(2024, 6, 1), date(2024, 7, 1), 30, 1, today)
		assert.ErrorIs(t, err, ErrRangeTooLong)
	})

	t.Run("policy wrapper", func(t *testing.T) {
		p := Policy{MinDays: 1, MaxDays: 2}
		_, err := p.Validate(date(2024, 6, 1), date(2024, 6, 3), today)
		assert.ErrorIs(t, err, ErrRangeTooLong)
	})
}

func TestTotalPrice(t *testing.T) {
	t.Run("exact product", func(t *testing.T) {
		got := TotalPrice(4, decimal.RequireFromString("25.50"))
		assert.Equal(t, "102.00", got.StringFixed(2))

		got = TotalPrice(3, decimal.RequireFromString("20.00"))
		assert.True(t, got.Equal(decimal.RequireFromString("60")))
	})

	t.Run("half up rounding", func(t *testing.T) {
		got := TotalPrice(1, decimal.RequireFromString("10.005"))
		assert.Equal(t, "10.01", got.StringFixed(2))
	})

	t.Run("monotonic in duration", func(t *testing.T) {
		rate := decimal.RequireFromString("7.35")
		prev := decimal.Zero
		for d := 1; d <= 60; d++ {
			cur := TotalPrice(d, rate)
			assert.True(t, cur.GreaterThanOrEqual(prev), "day %d", d)
			prev = cur
		}
	})
}

func TestParsePrice(t *testing.T) {
	valid := map[string]string{
		"25.5":        "25.5",
		"$30":         "30",
		" 12,75":      "12.75",
		"€ 8":         "8",
		"25.500":      "25.5",
		"99999999.99": "99999999.99",
	}
	for in, want := range valid {
		t.Run(in, func(t *testing.T) {
			got, err := ParsePrice(in)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(want)), "got %s", got)
		})
	}

	for _, in := range []string{"-5", "0", "abc", "", "$", "25.555", "0.001", "100000000", "123456789012"} {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := ParsePrice(in)
			assert.ErrorIs(t, err, ErrInvalidPrice)
		})
	}
}
