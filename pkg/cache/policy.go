package cache

import "time"

// MaxCacheAgeInDays is how long a cached feed stays valid.
const MaxCacheAgeInDays = 7

// ValidateTimestamp reports whether a snapshot taken at timestamp is still
// valid at against. Days are calendar days in timestamp's location.
func ValidateTimestamp(timestamp, against time.Time) bool {
	maxCacheAge := timestamp.AddDate(0, 0, MaxCacheAgeInDays)
	return against.Before(maxCacheAge)
}
