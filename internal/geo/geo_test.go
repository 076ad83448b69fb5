package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Run("identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(55.75, 37.61, 55.75, 37.61))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := DistanceKm(55.75, 37.61, 59.93, 30.33)
		d2 := DistanceKm(59.93, 30.33, 55.75, 37.61)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("moscow to saint petersburg", func(t *testing.T) {
		assert.InDelta(t, 634, DistanceKm(55.7558, 37.6173, 59.9343, 30.3351), 5)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		assert.InDelta(t, 111.19, DistanceKm(0, 0, 1, 0), 0.01)
	})

	t.Run("monotonic in separation", func(t *testing.T) {
		near := DistanceKm(0, 0, 0, 1)
		far := DistanceKm(0, 0, 0, 2)
		assert.Less(t, near, far)
	})
}

func TestAgeYears(t *testing.T) {
	birth := time.Date(2000, time.June, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		asOf time.Time
		want int
	}{
		{"day before birthday", time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC), 24},
		{"on birthday", time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), 25},
		{"earlier month", time.Date(2025, time.March, 30, 0, 0, 0, 0, time.UTC), 24},
		{"later month", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AgeYears(birth, tc.asOf))
		})
	}
}

func TestInterestOverlap(t *testing.T) {
	assert.Equal(t, 2, InterestOverlap([]string{"music", "hiking", "chess"}, []string{"chess", "music"}))
	assert.Equal(t, 1, InterestOverlap([]string{"music", "music"}, []string{"music", "music"}))
	assert.Equal(t, 0, InterestOverlap(nil, []string{"music"}))
	assert.Equal(t,
		InterestOverlap([]string{"a", "b", "c"}, []string{"c", "d"}),
		InterestOverlap([]string{"c", "d"}, []string{"a", "b", "c"}),
	)
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 10.1, RoundKm(10.0600))
	assert.Equal(t, 10.0, RoundKm(10.0400))
}
