// Package mqtt publishes POS bridge activity to an MQTT broker.
//
// When enabled, every handled command is published as JSON on
// {prefix}/commands/{command}/{device_id} and the bridge keeps a retained
// online/offline document on {prefix}/status, backed by a last will so
// subscribers notice a crash.
//
// The broker is optional. The bridge serves POS clients whether or not it is
// reachable, and publishing happens off the request path through the event bus.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	sink := events.NewMQTTSink(client, client.Topics().CommandEvent, byte(cfg.MQTT.QoS))
package mqtt
