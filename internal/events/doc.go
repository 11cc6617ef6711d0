// Package events carries command outcomes from websocket sessions to the
// optional journal, MQTT and InfluxDB sinks without blocking the sessions.
package events
