package service

import (
	"math"
	"strings"
)

// ParseQuantity reads a quantity leniently: surrounding whitespace is ignored, an
// optional sign and the leading run of digits are used, and anything else yields 0.
// "3" -> 3, " 2 items" -> 2, "1.9" -> 1, "-4" -> -4, "abc" -> 0, "" -> 0.
// Values beyond the int32 range are clamped.
func ParseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	negative := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		negative = true
		s = s[1:]
	}

	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int64(c-'0')
		if n > math.MaxInt32 {
			n = math.MaxInt32
			break
		}
	}

	if negative {
		return -int(n)
	}
	return int(n)
}
