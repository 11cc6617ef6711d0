// Package api serves the POS bridge over HTTP.
//
// The websocket endpoint (websocket.path, "/" by default) carries the command
// protocol: one JSON command per text frame, one JSON response per command,
// handled strictly in order per connection. Diagnostics live under /api/v1
// and require the shared secret as a Bearer token, except /health and
// /metrics.
//
//	server, err := api.New(deps)
//	if err := server.Start(ctx); err != nil { ... } // bind errors surface here
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
