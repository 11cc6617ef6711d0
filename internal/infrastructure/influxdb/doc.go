// Package influxdb writes POS bridge metrics to InfluxDB v2.
//
// Each handled command becomes one point in the bridge_commands measurement,
// tagged by command, device and status with its duration in milliseconds.
// Writes are batched per config (batch_size, flush_interval) and never block
// the connection that produced them.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	bus := events.NewBus(0, events.NewMetricsSink(client))
package influxdb
