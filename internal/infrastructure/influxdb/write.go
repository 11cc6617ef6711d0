package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// CommandMeasurement is the measurement every handled command is written to.
const CommandMeasurement = "bridge_commands"

// WriteCommandMetric records one handled command.
//
// command, device_id and status are tags; duration_ms is the only field.
// Commands without a device (auth, invalid) get device_id "none" so the tag
// is always present. The write is non-blocking.
func (c *Client) WriteCommandMetric(command, deviceID, status string, durationMS float64, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(commandPoint(command, deviceID, status, durationMS, ts))
}

func commandPoint(command, deviceID, status string, durationMS float64, ts time.Time) *write.Point {
	if deviceID == "" {
		deviceID = "none"
	}
	return write.NewPoint(
		CommandMeasurement,
		map[string]string{
			"command":   command,
			"device_id": deviceID,
			"status":    status,
		},
		map[string]interface{}{
			"duration_ms": durationMS,
		},
		ts,
	)
}
