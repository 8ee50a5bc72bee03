package persistpager

const (
	// DefaultMaxPerPage is the page size used when none is configured.
	DefaultMaxPerPage = 100
	// MaxPerPageLimit caps any configured page size.
	MaxPerPageLimit = 10000
)

func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	if limit <= 0 {
		return min(DefaultMaxPerPage, maxLimit), false
	} else if limit > maxLimit {
		return maxLimit, false
	}

	return limit, true
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

// NormalizeLimit clamps limit into [1, MaxPerPageLimit], substituting
// DefaultMaxPerPage for non-positive values.
func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxPerPageLimit)
}
