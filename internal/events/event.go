package events

import "time"

// CommandEvent is the outcome of one inbound command on one connection.
type CommandEvent struct {
	ID           string        `json:"id"`
	ConnectionID string        `json:"connection_id"`
	Command      string        `json:"command"`
	DeviceID     string        `json:"device_id,omitempty"`
	Status       string        `json:"status"`
	Message      string        `json:"message,omitempty"`
	Duration     time.Duration `json:"-"`
	Timestamp    time.Time     `json:"timestamp"`
}

// DurationMillis returns the command duration in milliseconds.
func (e CommandEvent) DurationMillis() float64 {
	return float64(e.Duration) / float64(time.Millisecond)
}
