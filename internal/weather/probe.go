package weather

import "time"

// ProbeResult records one upstream reachability check.
type ProbeResult struct {
	CheckedAt time.Time `json:"checkedAt"` // always UTC
	OK        bool      `json:"ok"`
	Reason    Reason    `json:"reason,omitempty"`
	LatencyMs int64     `json:"latencyMs"`
}
