// Package commands is the caller-facing operation surface shared by the HTTP
// API, the WebSocket RPC channel and the MCP tool server.
//
// Each command takes a JSON object of snake_case arguments and returns a
// JSON-serializable result:
//
//	govee_discover       {timeout_ms?}                  []bridge.DiscoveredDevice
//	govee_status         {host, port?}                  bridge.StatusResponse
//	govee_send           {host, port?, body}            {sent}
//	govee_turn           {host, port?, on}              {sent}
//	govee_brightness     {host, port?, value}           {sent}
//	govee_color          {host, port?, r, g, b, kelvin?} {sent}
//	govee_cloud_devices  {api_key}                      raw cloud JSON
//	govee_cloud_control  {api_key, device, model, cmd}  raw cloud JSON
//	govee_cloud_state    {api_key, device, model}       raw cloud JSON
//	roomsense_scan       {timeout_ms?}                  []radio.Descriptor
//	is_wifi_connected    {}                             bool
//
// Errors cross transport boundaries as strings; use ErrorString.
package commands
