package sourcemap

import (
	"errors"
	"fmt"
)

const (
	vlqBaseShift       = 5
	vlqBase            = 1 << vlqBaseShift
	vlqBaseMask        = vlqBase - 1
	vlqContinuationBit = vlqBase
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Values = func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		table[base64Alphabet[i]] = int8(i)
	}
	return table
}()

var errVLQTruncated = errors.New("truncated VLQ value")

// decodeVLQ reads one base64 VLQ value from s starting at i and returns the
// value and the index just past it.
func decodeVLQ(s string, i int) (int, int, error) {
	var result, shift int
	for {
		if i >= len(s) {
			return 0, i, errVLQTruncated
		}
		digit := base64Values[s[i]]
		if digit < 0 {
			return 0, i, fmt.Errorf("invalid base64 character %q at offset %d", s[i], i)
		}
		i++

		result += int(digit&vlqBaseMask) << shift
		if int(digit)&vlqContinuationBit == 0 {
			break
		}
		shift += vlqBaseShift
		if shift > 30 {
			return 0, i, fmt.Errorf("VLQ value overflows at offset %d", i)
		}
	}

	// The lowest bit carries the sign.
	if result&1 == 1 {
		return -(result >> 1), i, nil
	}
	return result >> 1, i, nil
}
