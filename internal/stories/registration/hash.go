package registration

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// HashLength is the exact length of a registration hash issued by the website
// (12 letters followed by 12 digits by convention).
const HashLength = 24

var (
	// ErrFormat is returned for malformed input that never reaches the network.
	ErrFormat = errors.New("malformed registration input")
	// ErrMissingHash is returned when a composite start argument has no hash part.
	ErrMissingHash = errors.Wrap(ErrFormat, "hash part is empty")
)

// NormalizeHash trims the candidate and checks its length. Only the length is
// validated locally; whether the hash exists is decided by the website.
func NormalizeHash(raw string) (string, error) {
	hash := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(hash); n != HashLength {
		return "", errors.Wrapf(ErrFormat, "hash must be %d characters, got %d", HashLength, n)
	}
	return hash, nil
}

// StartArgs is the parsed argument of the /start deep link.
type StartArgs struct {
	TierID string
	Hash   string
}

// ParseStartArgs parses "{tierId}_{hash}". The split happens on the first
// underscore only since the hash may contain underscores. A bare 24 character
// argument without a tier part is accepted as a hash.
func ParseStartArgs(raw string) (StartArgs, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StartArgs{}, errors.Wrap(ErrFormat, "empty start argument")
	}

	tierID, hash, found := strings.Cut(raw, "_")
	if !found {
		if _, err := NormalizeHash(raw); err == nil {
			return StartArgs{Hash: raw}, nil
		}
		return StartArgs{}, errors.Wrapf(ErrFormat, "start argument %q has no tier separator", raw)
	}

	if tierID == "" {
		return StartArgs{}, errors.Wrap(ErrFormat, "tier part is empty")
	}
	if hash == "" {
		return StartArgs{}, ErrMissingHash
	}

	return StartArgs{TierID: tierID, Hash: hash}, nil
}
