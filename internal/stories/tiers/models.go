package tiers

import "github.com/pkg/errors"

// LifetimeDays is sent to the website as the duration of a lifetime tier.
const LifetimeDays = 36500

var ErrUnknownTier = errors.New("unknown subscription tier")

type Tier struct {
	ID           string
	Name         string
	PriceStars   int
	DurationDays int
}

func (t Tier) IsLifetime() bool {
	return t.DurationDays == LifetimeDays
}

type tierFile struct {
	Tiers []tierEntry `yaml:"tiers"`
}

type tierEntry struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	PriceStars   int    `yaml:"price_stars"`
	DurationDays int    `yaml:"duration_days"`
	Lifetime     bool   `yaml:"lifetime"`
}
