package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Publisher is the MQTT publish capability used by MQTTSink.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// TopicFunc maps a command and device to an MQTT topic.
type TopicFunc func(command, deviceID string) string

// MQTTSink publishes each event as JSON.
type MQTTSink struct {
	pub   Publisher
	topic TopicFunc
	qos   byte
}

// NewMQTTSink creates a sink publishing through pub.
func NewMQTTSink(pub Publisher, topic TopicFunc, qos byte) *MQTTSink {
	return &MQTTSink{pub: pub, topic: topic, qos: qos}
}

func (s *MQTTSink) Name() string { return "mqtt" }

type mqttPayload struct {
	CommandEvent
	DurationMS float64 `json:"duration_ms"`
}

func (s *MQTTSink) Handle(_ context.Context, ev CommandEvent) error {
	payload, err := json.Marshal(mqttPayload{CommandEvent: ev, DurationMS: ev.DurationMillis()})
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return s.pub.Publish(s.topic(ev.Command, ev.DeviceID), payload, s.qos, false)
}

// MetricWriter is the time-series capability used by MetricsSink.
type MetricWriter interface {
	WriteCommandMetric(command, deviceID, status string, durationMS float64, ts time.Time)
}

// MetricsSink records command latency and outcome as time-series points.
type MetricsSink struct {
	w MetricWriter
}

// NewMetricsSink creates a sink writing through w.
func NewMetricsSink(w MetricWriter) *MetricsSink {
	return &MetricsSink{w: w}
}

func (s *MetricsSink) Name() string { return "influxdb" }

func (s *MetricsSink) Handle(_ context.Context, ev CommandEvent) error {
	s.w.WriteCommandMetric(ev.Command, ev.DeviceID, ev.Status, ev.DurationMillis(), ev.Timestamp)
	return nil
}
