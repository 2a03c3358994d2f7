package tiers

import (
	_ "embed"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed tiers.yaml
var defaultTiers []byte

var tierIDPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Service holds the static tier table. It is immutable after construction
// and safe for concurrent use.
type Service struct {
	ordered []Tier
	byID    map[string]Tier
}

// NewService loads the tier table from path, or the embedded default table
// when path is empty.
func NewService(path string) (*Service, error) {
	data := defaultTiers
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read tiers file %s", path)
		}
		data = raw
	}
	return Parse(data)
}

// Parse builds the tier table from YAML.
func Parse(data []byte) (*Service, error) {
	var file tierFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse tiers")
	}
	if len(file.Tiers) == 0 {
		return nil, errors.New("tier table is empty")
	}

	s := &Service{byID: make(map[string]Tier, len(file.Tiers))}
	for _, e := range file.Tiers {
		t, err := e.toTier()
		if err != nil {
			return nil, err
		}
		if _, dup := s.byID[t.ID]; dup {
			return nil, errors.Errorf("duplicate tier id %q", t.ID)
		}
		s.byID[t.ID] = t
		s.ordered = append(s.ordered, t)
	}
	return s, nil
}

func (e tierEntry) toTier() (Tier, error) {
	if !tierIDPattern.MatchString(e.ID) {
		return Tier{}, errors.Errorf("tier id %q must match %s", e.ID, tierIDPattern)
	}
	if e.PriceStars <= 0 {
		return Tier{}, errors.Errorf("tier %q: price must be positive", e.ID)
	}

	days := e.DurationDays
	if e.Lifetime {
		days = LifetimeDays
	} else if days <= 0 {
		return Tier{}, errors.Errorf("tier %q: duration must be positive", e.ID)
	}

	name := e.Name
	if name == "" {
		name = e.ID
	}

	return Tier{ID: e.ID, Name: name, PriceStars: e.PriceStars, DurationDays: days}, nil
}

// Get returns the tier by id or ErrUnknownTier.
func (s *Service) Get(id string) (Tier, error) {
	t, ok := s.byID[id]
	if !ok {
		return Tier{}, errors.Wrapf(ErrUnknownTier, "tier %q", id)
	}
	return t, nil
}

// List returns tiers in configuration order.
func (s *Service) List() []Tier {
	return append([]Tier(nil), s.ordered...)
}

// IDs returns tier ids in configuration order.
func (s *Service) IDs() []string {
	return lo.Map(s.ordered, func(t Tier, _ int) string { return t.ID })
}

// Single returns the only tier of a flat-rate table.
func (s *Service) Single() (Tier, bool) {
	if len(s.ordered) != 1 {
		return Tier{}, false
	}
	return s.ordered[0], true
}
