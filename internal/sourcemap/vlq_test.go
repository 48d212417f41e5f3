package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeVLQ appends the base64 VLQ encoding of v to dst.
func encodeVLQ(dst []byte, v int) []byte {
	n := v << 1
	if v < 0 {
		n = (-v << 1) | 1
	}
	for {
		digit := n & vlqBaseMask
		n >>= vlqBaseShift
		if n > 0 {
			digit |= vlqContinuationBit
		}
		dst = append(dst, base64Alphabet[digit])
		if n == 0 {
			return dst
		}
	}
}

func TestDecodeVLQ(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"A", 0},
		{"C", 1},
		{"D", -1},
		{"gB", 16},
		{"hB", -16},
		{"2H", 123},
		{"+/D", 2047},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, next, err := decodeVLQ(tt.in, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.in), next)
		})
	}
}

func TestVLQRoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, -1, 15, 16, -16, 31, 32, 1000, -1000, 1 << 20} {
		enc := string(encodeVLQ(nil, v))
		got, next, err := decodeVLQ(enc, 0)
		require.NoError(t, err, enc)
		assert.Equal(t, v, got, enc)
		assert.Equal(t, len(enc), next)
	}
}

func TestDecodeVLQInvalid(t *testing.T) {
	_, _, err := decodeVLQ("A!", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid base64")

	_, _, err = decodeVLQ("g", 0)
	assert.ErrorIs(t, err, errVLQTruncated)
}
