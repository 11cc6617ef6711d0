// Package protocol defines the bridge's websocket wire format.
//
// Inbound messages are JSON objects tagged by "type":
//
//	{"type":"auth","token":"..."}
//	{"type":"print","device_id":"p1","data":{"text":"...","auto_cut":true}}
//	{"type":"cut","device_id":"p1"}
//	{"type":"open_drawer","device_id":"d1"}
//	{"type":"display_update","device_id":"v1","data":{"line1":"...","line2":"..."}}
//	{"type":"display_clear","device_id":"v1"}
//
// Every inbound message gets exactly one Response:
//
//	{"status":"ok"|"error","device_id":"...","message":"..."}
//
// with device_id and message omitted when empty.
package protocol
