// Package server exposes a bridge's commands over HTTP and WebSocket.
//
// Every route dispatches to a commands.Registry, so the REST API, the
// WebSocket RPC channel and the MCP tool server all offer the same
// operations with the same argument names.
//
// # Routes
//
//	GET  /health                      bridge state, datagram counters, version
//	GET  /api/v1/commands             registered commands
//	POST /api/v1/commands/:name       invoke any command; body is its arguments
//	POST /api/v1/lan/discover         {timeout_ms?}
//	POST /api/v1/lan/status           {host, port?}
//	POST /api/v1/lan/send             {host, port?, body}
//	POST /api/v1/lan/turn             {host, port?, on}
//	POST /api/v1/lan/brightness       {host, port?, value}
//	POST /api/v1/lan/color            {host, port?, r, g, b, kelvin?}
//	POST /api/v1/cloud/devices        {api_key}
//	POST /api/v1/cloud/control        {api_key, device, model, cmd}
//	POST /api/v1/cloud/state          {api_key, device, model}
//	POST /api/v1/radio/scan           {timeout_ms?}
//	GET  /api/v1/network/wifi
//	GET  /ws                          WebSocket RPC
//
// Failed calls return an ErrorResponse with a status derived from the error:
// 400 for bad arguments, 504 when a light does not answer, 502 for network
// and cloud failures, 401/429 for cloud auth and rate limiting.
//
// # WebSocket RPC
//
// Each text message is a request:
//
//	{"id": 7, "command": "govee_status", "args": {"host": "192.168.1.42"}}
//
// and is answered, possibly out of order, with:
//
//	{"id": 7, "ok": true, "result": {...}}
//	{"id": 7, "ok": false, "error": "Light not responding (timeout): ..."}
//
// Requests on one session run concurrently. Closing the session cancels
// those still in flight.
//
// # Graceful Shutdown
//
// Start handles SIGINT and SIGTERM: it stops the HTTP server, closes open
// sessions, then closes registered resources (the mDNS announcement and
// the bridge socket).
package server
