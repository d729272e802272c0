package utils

import "time"

// TimeNowUTC returns the current instant in UTC. All persisted timestamps use
// UTC so that merge precedence comparisons are timezone independent.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}
