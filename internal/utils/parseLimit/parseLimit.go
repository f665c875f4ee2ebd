package utils

import "strconv"

// MaxLimit caps listing pages requested through ?limit=.
const MaxLimit = 200

// ParseLimit returns 0 (no limit) for anything that is not a positive number
// and clamps the rest to MaxLimit.
func ParseLimit(s string) int {
	limit, err := strconv.Atoi(s)
	if err != nil || limit <= 0 {
		return 0
	}

	return min(limit, MaxLimit)
}
