package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseMinor converts a decimal string such as "12.34" or "12,3" into minor
// units with the given number of decimals. Extra fraction digits are
// truncated, missing ones are padded. An empty string is zero.
func ParseMinor(s string, decimals int) (int64, error) {
	if decimals < 0 {
		return 0, invalidf("decimals %d", decimals)
	}
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0, nil
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, invalidf("amount %q", s)
			}
		}
	}
	v, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, invalidf("amount %q: %v", s, err)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// FormatMinor renders minor units with the given number of decimals.
func FormatMinor(v int64, decimals int) string {
	sign := ""
	var m uint64
	if v < 0 {
		sign = "-"
		if v == math.MinInt64 {
			m = uint64(math.MaxInt64) + 1
		} else {
			m = uint64(-v)
		}
	} else {
		m = uint64(v)
	}
	if decimals <= 0 {
		return sign + strconv.FormatUint(m, 10)
	}
	s := fmt.Sprintf("%0*d", decimals+1, m)
	return sign + s[:len(s)-decimals] + "." + s[len(s)-decimals:]
}
