package utils

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	couponRandomMin = 10000
	couponRandomMax = 99999
	// couponTimeDigits is how many trailing digits of the Unix millisecond clock are appended
	couponTimeDigits = 3
)

// CouponGenerator builds coupon codes from a participant name, a bounded random number and the clock.
// Codes are not guaranteed unique; storage enforces uniqueness.
type CouponGenerator struct {
	intN func(n int) int
	now  func() time.Time
}

// NewCouponGenerator returns a generator backed by the process-wide math/rand source
func NewCouponGenerator() *CouponGenerator {
	return &CouponGenerator{intN: rand.IntN, now: time.Now}
}

// NewCouponGeneratorWith returns a generator with an explicit random source and clock
func NewCouponGeneratorWith(intN func(n int) int, now func() time.Time) *CouponGenerator {
	return &CouponGenerator{intN: intN, now: now}
}

// Generate returns PREFIX + 5 random digits + the last 3 digits of the current Unix millisecond time.
// PREFIX is the upper-cased first two runes of the trimmed name, or the whole name when shorter.
func (g *CouponGenerator) Generate(name string) string {
	random := couponRandomMin + g.intN(couponRandomMax-couponRandomMin+1)
	millis := g.now().UnixMilli() % 1000
	return fmt.Sprintf("%s%d%0*d", CouponPrefix(name), random, couponTimeDigits, millis)
}

// CouponPrefix returns the upper-cased first two runes of the trimmed name
func CouponPrefix(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}
