package validity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestNew(t *testing.T) {
	t.Run("rejects end before start", func(t *testing.T) {
		_, err := New(datePtr(2024, 6, 1), datePtr(2024, 1, 1))
		require.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("never swaps bounds on rejection", func(t *testing.T) {
		iv, err := New(datePtr(2024, 6, 1), datePtr(2024, 1, 1))
		require.Error(t, err)
		assert.Zero(t, iv)
	})

	t.Run("accepts equal bounds", func(t *testing.T) {
		iv, err := New(datePtr(2024, 1, 1), datePtr(2024, 1, 1))
		require.NoError(t, err)
		days, ok := iv.DurationDays()
		require.True(t, ok)
		assert.Equal(t, 0, days)
	})

	t.Run("accepts open bounds in any combination", func(t *testing.T) {
		for _, tc := range []struct {
			name       string
			start, end *time.Time
		}{
			{"open start", nil, datePtr(2024, 1, 1)},
			{"open end", datePtr(2024, 1, 1), nil},
			{"wholly open", nil, nil},
		} {
			t.Run(tc.name, func(t *testing.T) {
				_, err := New(tc.start, tc.end)
				require.NoError(t, err)
			})
		}
	})
}

func TestCovers(t *testing.T) {
	iv, err := New(datePtr(2024, 1, 1), datePtr(2024, 6, 1))
	require.NoError(t, err)

	t.Run("start is inclusive", func(t *testing.T) {
		assert.True(t, iv.Covers(date(2024, 1, 1)))
	})

	t.Run("end is exclusive", func(t *testing.T) {
		assert.False(t, iv.Covers(date(2024, 6, 1)))
		assert.True(t, iv.Covers(date(2024, 5, 31)))
	})

	t.Run("outside the window", func(t *testing.T) {
		assert.False(t, iv.Covers(date(2023, 12, 31)))
		assert.False(t, iv.Covers(date(2024, 6, 2)))
	})

	t.Run("open bounds cover everything on their side", func(t *testing.T) {
		openStart := Interval{End: datePtr(2024, 6, 1)}
		assert.True(t, openStart.Covers(date(1990, 1, 1)))

		openEnd := Interval{Start: datePtr(2024, 1, 1)}
		assert.True(t, openEnd.Covers(date(2099, 1, 1)))

		assert.True(t, Interval{}.Covers(date(2024, 1, 1)))
	})
}

func TestClassify(t *testing.T) {
	now := date(2024, 1, 1)

	tests := []struct {
		name string
		iv   Interval
		want State
	}{
		{"future start wins regardless of end", Interval{Start: datePtr(2025, 1, 1), End: datePtr(2025, 6, 1)}, StateFuture},
		{"future start with open end wins over permanent", Interval{Start: datePtr(2025, 1, 1)}, StateFuture},
		{"expired when end strictly before now", Interval{Start: datePtr(2023, 1, 1), End: datePtr(2023, 12, 31)}, StateExpired},
		{"not expired at now == end", Interval{Start: datePtr(2023, 1, 1), End: datePtr(2024, 1, 1)}, StateActive},
		{"permanent when end open and started", Interval{Start: datePtr(2023, 1, 1)}, StatePermanent},
		{"permanent when wholly open", Interval{}, StatePermanent},
		{"active inside bounded window", Interval{Start: datePtr(2023, 6, 1), End: datePtr(2024, 6, 1)}, StateActive},
		{"active with open start", Interval{End: datePtr(2024, 6, 1)}, StateActive},
		{"active when start == now", Interval{Start: datePtr(2024, 1, 1), End: datePtr(2024, 6, 1)}, StateActive},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.iv.Classify(now))
		})
	}

	t.Run("is total over the four states", func(t *testing.T) {
		// Every bound combination maps to exactly one state.
		candidates := []Interval{
			{},
			{Start: datePtr(2023, 1, 1)},
			{End: datePtr(2023, 1, 1)},
			{Start: datePtr(2025, 1, 1)},
			{End: datePtr(2025, 1, 1)},
			{Start: datePtr(2023, 1, 1), End: datePtr(2023, 6, 1)},
			{Start: datePtr(2025, 1, 1), End: datePtr(2025, 6, 1)},
		}
		valid := map[State]bool{StateFuture: true, StateActive: true, StatePermanent: true, StateExpired: true}
		for _, iv := range candidates {
			assert.True(t, valid[iv.Classify(now)])
		}
	})
}

func TestPredicates(t *testing.T) {
	now := date(2024, 1, 1)

	active, err := New(datePtr(2023, 6, 1), datePtr(2024, 6, 1))
	require.NoError(t, err)
	assert.True(t, active.IsActive(now))
	assert.False(t, active.IsPermanent())
	assert.False(t, active.IsExpired(now))
	assert.False(t, active.IsFuture(now))

	permanent := Interval{Start: datePtr(2023, 1, 1)}
	assert.True(t, permanent.IsPermanent())
	assert.False(t, permanent.IsActive(now))
}

func TestExpiringWithin(t *testing.T) {
	// End-to-end scenario: [null, 2024-01-10), now = 2024-01-05.
	iv := Interval{End: datePtr(2024, 1, 10)}
	now := date(2024, 1, 5)

	t.Run("inside the 7 day window", func(t *testing.T) {
		assert.True(t, iv.ExpiringWithin(now, 7))
	})

	t.Run("outside the 3 day window", func(t *testing.T) {
		assert.False(t, iv.ExpiringWithin(now, 3))
	})

	t.Run("window boundary is inclusive", func(t *testing.T) {
		assert.True(t, iv.ExpiringWithin(now, 5))
	})

	t.Run("already-ended windows never report", func(t *testing.T) {
		past := Interval{End: datePtr(2024, 1, 5)}
		assert.False(t, past.ExpiringWithin(now, 7))
	})

	t.Run("open end never reports", func(t *testing.T) {
		assert.False(t, Interval{}.ExpiringWithin(now, 30))
	})
}

func TestDurationDays(t *testing.T) {
	t.Run("whole days between bounds", func(t *testing.T) {
		iv, err := New(datePtr(2023, 1, 1), datePtr(2023, 1, 20))
		require.NoError(t, err)
		days, ok := iv.DurationDays()
		require.True(t, ok)
		assert.Equal(t, 19, days)
	})

	t.Run("unbounded when either bound open", func(t *testing.T) {
		_, ok := Interval{Start: datePtr(2023, 1, 1)}.DurationDays()
		assert.False(t, ok)
		_, ok = Interval{End: datePtr(2023, 1, 1)}.DurationDays()
		assert.False(t, ok)
	})
}

func TestDurationBucket(t *testing.T) {
	start := datePtr(2024, 1, 1)
	endAfter := func(days int) *time.Time {
		t := start.AddDate(0, 0, days)
		return &t
	}

	tests := []struct {
		name string
		iv   Interval
		want Bucket
	}{
		{"permanent iff end absent", Interval{Start: start}, BucketPermanent},
		{"wholly open is permanent", Interval{}, BucketPermanent},
		{"30 days is short term", Interval{Start: start, End: endAfter(30)}, BucketShortTerm},
		{"31 days is medium term", Interval{Start: start, End: endAfter(31)}, BucketMediumTerm},
		{"365 days is medium term", Interval{Start: start, End: endAfter(365)}, BucketMediumTerm},
		{"366 days is long term", Interval{Start: start, End: endAfter(366)}, BucketLongTerm},
		{"open start with defined end has no bucket", Interval{End: endAfter(10)}, BucketUnbounded},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.iv.DurationBucket())
		})
	}
}

func TestDefaultedAt(t *testing.T) {
	now := date(2024, 3, 15)

	t.Run("wholly open becomes starting-now indefinite", func(t *testing.T) {
		got := Interval{}.DefaultedAt(now)
		require.NotNil(t, got.Start)
		assert.Equal(t, now, *got.Start)
		assert.Nil(t, got.End)
	})

	t.Run("any defined bound passes through", func(t *testing.T) {
		iv := Interval{End: datePtr(2024, 6, 1)}
		assert.Equal(t, iv, iv.DefaultedAt(now))

		iv = Interval{Start: datePtr(2024, 1, 1)}
		assert.Equal(t, iv, iv.DefaultedAt(now))
	})
}

// Scenario 4 from the acceptance checklist: a short past window classifies
// expired and buckets short-term.
func TestExpiredShortTermScenario(t *testing.T) {
	iv, err := New(datePtr(2023, 1, 1), datePtr(2023, 1, 20))
	require.NoError(t, err)

	now := date(2024, 1, 1)
	assert.Equal(t, StateExpired, iv.Classify(now))
	assert.Equal(t, BucketShortTerm, iv.DurationBucket())
}

// Scenario 5: a record starting next year is future even with no end.
func TestFutureIndefiniteScenario(t *testing.T) {
	iv, err := New(datePtr(2025, 1, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, StateFuture, iv.Classify(date(2024, 1, 1)))
}
