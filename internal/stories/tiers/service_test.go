package tiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	s, err := NewService("")
	require.NoError(t, err)

	month, err := s.Get("1month")
	require.NoError(t, err)
	assert.Equal(t, 115, month.PriceStars)
	assert.Equal(t, 30, month.DurationDays)
	assert.False(t, month.IsLifetime())

	lifetime, err := s.Get("lifetime")
	require.NoError(t, err)
	assert.True(t, lifetime.IsLifetime())
	assert.Equal(t, LifetimeDays, lifetime.DurationDays)

	assert.Equal(t, []string{"1month", "3months", "1year", "lifetime"}, s.IDs())

	_, single := s.Single()
	assert.False(t, single)
}

func TestGetUnknownTier(t *testing.T) {
	s, err := NewService("")
	require.NoError(t, err)

	_, err = s.Get("2weeks")
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestFlatRateTable(t *testing.T) {
	s, err := Parse([]byte(`
tiers:
  - id: monthly
    price_stars: 1
    duration_days: 30
`))
	require.NoError(t, err)

	tier, ok := s.Single()
	require.True(t, ok)
	assert.Equal(t, "monthly", tier.ID)
	assert.Equal(t, "monthly", tier.Name)
}

func TestParseRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty", yaml: "tiers: []"},
		{name: "underscore in id", yaml: "tiers:\n  - {id: one_month, price_stars: 1, duration_days: 30}"},
		{name: "zero price", yaml: "tiers:\n  - {id: a, price_stars: 0, duration_days: 30}"},
		{name: "zero duration", yaml: "tiers:\n  - {id: a, price_stars: 1}"},
		{name: "duplicate", yaml: "tiers:\n  - {id: a, price_stars: 1, duration_days: 1}\n  - {id: a, price_stars: 2, duration_days: 2}"},
		{name: "not yaml", yaml: "tiers: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
