package telegram

import (
	"fmt"
	"math"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
)

// DefaultMaxAge bounds how long a captured payload can be replayed.
const DefaultMaxAge = 5 * time.Minute

// Bounds of auth_date (unix seconds) whose millisecond value fits int64.
const (
	minAuthDate = math.MinInt64 / 1000
	maxAuthDate = math.MaxInt64 / 1000
)

// CheckFreshness fails with ErrStaleAuthData when authDate (unix seconds) is
// more than maxAge before now. Dates in the future pass.
func CheckFreshness(authDate int64, now time.Time, maxAge time.Duration) error {
	switch {
	case authDate < minAuthDate:
		return stale(authDate, maxAge)
	case authDate > maxAuthDate:
		return nil
	}
	// authDate*1000 < now-maxAge is age > maxAge without computing the age,
	// which could overflow for dates far in the past.
	if authDate*1000 < now.UnixMilli()-maxAge.Milliseconds() {
		return stale(authDate, maxAge)
	}
	return nil
}

func stale(authDate int64, maxAge time.Duration) error {
	return fmt.Errorf("%w: auth_date %d is older than %s", customErrors.ErrStaleAuthData, authDate, maxAge)
}
