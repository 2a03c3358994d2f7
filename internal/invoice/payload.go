package invoice

import (
	"strings"

	"github.com/pkg/errors"
)

// Delimiter separates the hash and the tier id inside an invoice payload.
// Tier ids never contain an underscore, so the last occurrence is always the
// separator even when the hash itself contains one.
const Delimiter = "__"

var ErrPayloadDecode = errors.New("malformed invoice payload")

// Payload travels through the payment provider and comes back verbatim with
// the successful payment.
type Payload struct {
	Hash   string
	TierID string
}

// Encode builds the payload. The hash may be empty when the user paid
// without a linked account.
func Encode(hash, tierID string) string {
	return hash + Delimiter + tierID
}

// String implements fmt.Stringer.
func (p Payload) String() string {
	return Encode(p.Hash, p.TierID)
}

// Decode splits the payload on the last delimiter.
func Decode(raw string) (Payload, error) {
	idx := strings.LastIndex(raw, Delimiter)
	if idx < 0 {
		return Payload{}, errors.Wrapf(ErrPayloadDecode, "no delimiter in %q", raw)
	}

	p := Payload{
		Hash:   raw[:idx],
		TierID: raw[idx+len(Delimiter):],
	}
	if p.TierID == "" || strings.Contains(p.TierID, "_") {
		return Payload{}, errors.Wrapf(ErrPayloadDecode, "bad tier id in %q", raw)
	}

	return p, nil
}
