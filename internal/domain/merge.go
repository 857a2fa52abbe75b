package domain

import (
	"time"

	"dario.cat/mergo"
)

// ApplyCreateDefaults fills the fields every freshly created experiment
// must carry: start_time defaults to now, heartbeat to start_time and
// status to RUNNING. Caller-supplied values win.
func ApplyCreateDefaults(fields Document, now time.Time) error {
	start := now
	if t, ok := fields.StartedAt(); ok {
		start = t
	}

	defaults := Document{
		FieldStartTime: start,
		FieldHeartbeat: start,
		FieldStatus:    string(StatusRunning),
	}

	dst := map[string]any(fields)
	return mergo.Merge(&dst, map[string]any(defaults))
}
