package models

// RetentionStatus classifies a scored customer by probability of still
// being active.
type RetentionStatus string

const (
	RetentionStatusRetained RetentionStatus = "retained"
	RetentionStatusChurning RetentionStatus = "churning"
	RetentionStatusLost     RetentionStatus = "lost"
)

// Classification thresholds on predicted p_alive. A customer at exactly 0.5
// counts as churning: the upper bound is inclusive, matching the long
// established reporting behavior.
const (
	pAliveActiveThreshold   = 0.3
	pAliveChurningThreshold = 0.5
)

// IsActivePAlive reports whether the p_alive value qualifies as active
// (retained or churning, as opposed to lost).
func IsActivePAlive(pAlive float64) bool {
	return pAlive >= pAliveActiveThreshold
}

// IsChurningPAlive reports whether the p_alive value falls in the churning
// band, both bounds inclusive.
func IsChurningPAlive(pAlive float64) bool {
	return pAlive >= pAliveActiveThreshold && pAlive <= pAliveChurningThreshold
}

// RetentionStatusOf maps a predicted p_alive to its retention status.
func RetentionStatusOf(pAlive float64) RetentionStatus {
	if !IsActivePAlive(pAlive) {
		return RetentionStatusLost
	}
	if IsChurningPAlive(pAlive) {
		return RetentionStatusChurning
	}
	return RetentionStatusRetained
}
