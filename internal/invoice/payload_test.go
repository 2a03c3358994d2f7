package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	p, err := Decode("ABCDEFGHIJKL123456789012__1month")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGHIJKL123456789012", p.Hash)
	assert.Equal(t, "1month", p.TierID)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		hash   string
		tierID string
	}{
		{name: "plain", hash: "ABCDEFGHIJKL123456789012", tierID: "1month"},
		{name: "no hash", hash: "", tierID: "lifetime"},
		{name: "underscore in hash", hash: "ABCDEF_HIJKL123456789012", tierID: "3months"},
		{name: "delimiter in hash", hash: "ABCDEF__IJKL123456789012", tierID: "1year"},
		{name: "trailing underscore in hash", hash: "ABCDEFGHIJKL12345678901_", tierID: "1month"},
		{name: "dash in tier", hash: "ABCDEFGHIJKL123456789012", tierID: "promo-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(Encode(tt.hash, tt.tierID))
			require.NoError(t, err)
			assert.Equal(t, Payload{Hash: tt.hash, TierID: tt.tierID}, got)
			assert.Equal(t, Encode(tt.hash, tt.tierID), got.String())
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, raw := range []string{
		"",
		"subscription_payment_1_star",
		"ABCDEFGHIJKL123456789012__",
		"ABCDEFGHIJKL123456789012___",
	} {
		_, err := Decode(raw)
		assert.ErrorIs(t, err, ErrPayloadDecode, "payload %q", raw)
	}
}
