package btcaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want Kind
	}{
		{"legacy p2pkh", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", KindP2PKH},
		{"p2sh", "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", KindP2SH},
		{"segwit v0", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", KindSegWit},
		{"taproot", "bc1p5d7rjq7g6rdk2yhzks9smlaqtedr4dekq08ge8ztwac72sfr9rusxg3297", KindTaproot},
		{"testnet segwit", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", KindSegWit},
		{"uppercase bech32", "BC1QW508D6QEJXTDG4Y5R3ZARVARY0C5XW7KV8F3T4", KindSegWit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := Classify(tt.addr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestClassify_Invalid(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"garbage", "not-an-address"},
		{"too short bech32", "bc1qabc"},
		{"bad bech32 charset", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3tb"},
		{"unknown witness version char", "bc1zw508d6qejxtdg4y5r3zarvaryvaxxpcs"},
		{"truncated base58", "1A1zP1eP5QGefi2DMPTfT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.addr)
			assert.Error(t, err)
			assert.False(t, IsValid(tt.addr))
		})
	}
}

func TestClassify_CorruptedChecksum(t *testing.T) {
	// Genesis address with the last character flipped.
	_, err := Classify("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb")
	assert.ErrorIs(t, err, ErrBadChecksum)
}
