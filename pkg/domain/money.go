package domain

import "fmt"

// Money is an amount in minor currency units (cents). Stored and compared
// as an integer; no floating point anywhere in billing.
type Money int64

func (m Money) Cents() int64 { return int64(m) }

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
