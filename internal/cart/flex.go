package cart

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// The flex types decode scalar fields that the server sends inconsistently
// (number, numeric string, null or absent). They never fail: anything
// unusable decodes to the zero value.

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = ""
			return nil
		}
		*f = flexString(strings.TrimSpace(s))
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*f = flexString(data)
	default:
		*f = ""
	}
	return nil
}

type flexDecimal struct {
	value   decimal.Decimal
	present bool
}

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	*f = flexDecimal{}
	var s flexString
	_ = s.UnmarshalJSON(data)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(string(s))
	if err != nil {
		return nil
	}
	f.value, f.present = d, true
	return nil
}

func (f flexDecimal) nonNegative() decimal.Decimal {
	if f.value.IsNegative() {
		return decimal.Zero
	}
	return f.value
}

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = 0
	var s flexString
	_ = s.UnmarshalJSON(data)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(string(s)); err == nil {
		*f = flexInt(n)
		return nil
	}
	if x, err := strconv.ParseFloat(string(s), 64); err == nil && !math.IsNaN(x) && !math.IsInf(x, 0) {
		*f = flexInt(math.Trunc(x))
	}
	return nil
}

func (f flexInt) nonNegative() int {
	if f < 0 {
		return 0
	}
	return int(f)
}
