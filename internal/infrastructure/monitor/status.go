package monitor

import "time"

type Status struct {
	Components map[string]bool `json:"components"`
	OutboxSize int             `json:"outboxSize"`
	LastCheck  time.Time       `json:"lastCheck"`
}

// Healthy reports whether every required component passed its last check.
func (s Status) Healthy(required []string) bool {
	if s.LastCheck.IsZero() {
		return false
	}
	for _, name := range required {
		if !s.Components[name] {
			return false
		}
	}
	return true
}
