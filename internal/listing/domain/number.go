package domain

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric public-data field. Extended data is untyped on the
// platform side, so values arrive as JSON numbers, numeric strings, empty
// strings or null. Anything that is not a finite number decodes as absent.
type Number struct {
	value float64
	valid bool
}

func NumberOf(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{value: v, valid: true}
}

func (n Number) Float64() (float64, bool) {
	return n.value, n.valid
}

func (n Number) OrZero() float64 {
	if !n.valid {
		return 0
	}
	return n.value
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}

	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	text := string(raw)
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return nil
		}
		text = strings.TrimSpace(unquoted)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	*n = NumberOf(v)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.value, 'f', -1, 64)), nil
}
