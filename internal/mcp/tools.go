package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, handler)
	s.tools = append(s.tools, tool.Name)
}

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	hostOpts := []mcp.ToolOption{
		mcp.WithString("host",
			mcp.Required(),
			mcp.Description("Light IP address or hostname"),
		),
		mcp.WithNumber("port",
			mcp.Description("Light control port (default 4003)"),
		),
	}

	// LAN
	s.addTool(
		mcp.NewTool("lan_discover",
			mcp.WithDescription("Find Govee lights on the local network and return their addresses, models and device IDs"),
			mcp.WithNumber("timeout_ms",
				mcp.Description("How long to collect responses in milliseconds (default 3000)"),
			),
		),
		s.invoke("govee_discover"),
	)

	s.addTool(
		mcp.NewTool("lan_status",
			append([]mcp.ToolOption{
				mcp.WithDescription("Get a light's power, brightness and color over the LAN"),
			}, hostOpts...)...,
		),
		s.invoke("govee_status"),
	)

	s.addTool(
		mcp.NewTool("lan_send",
			append([]mcp.ToolOption{
				mcp.WithDescription("Send a raw LAN command without waiting for an answer"),
				mcp.WithObject("body",
					mcp.Required(),
					mcp.Description("Command envelope, e.g. {\"msg\":{\"cmd\":\"turn\",\"data\":{\"value\":1}}}"),
				),
			}, hostOpts...)...,
		),
		s.invoke("govee_send"),
	)

	s.addTool(
		mcp.NewTool("lan_turn",
			append([]mcp.ToolOption{
				mcp.WithDescription("Turn a light on or off"),
				mcp.WithBoolean("on",
					mcp.Required(),
					mcp.Description("true to turn on, false to turn off"),
				),
			}, hostOpts...)...,
		),
		s.invoke("govee_turn"),
	)

	s.addTool(
		mcp.NewTool("lan_brightness",
			append([]mcp.ToolOption{
				mcp.WithDescription("Set a light's brightness"),
				mcp.WithNumber("value",
					mcp.Required(),
					mcp.Description("Brightness percentage (1-100)"),
				),
			}, hostOpts...)...,
		),
		s.invoke("govee_brightness"),
	)

	s.addTool(
		mcp.NewTool("lan_color",
			append([]mcp.ToolOption{
				mcp.WithDescription("Set a light's RGB color, or white at a color temperature"),
				mcp.WithNumber("r", mcp.Description("Red (0-255)")),
				mcp.WithNumber("g", mcp.Description("Green (0-255)")),
				mcp.WithNumber("b", mcp.Description("Blue (0-255)")),
				mcp.WithNumber("kelvin",
					mcp.Description("White color temperature 2000-9000; omit for RGB"),
				),
			}, hostOpts...)...,
		),
		s.invoke("govee_color"),
	)

	// Cloud
	apiKey := mcp.WithString("api_key",
		mcp.Description("Govee developer API key (defaults to the server's configured key)"),
	)

	s.addTool(
		mcp.NewTool("cloud_devices",
			mcp.WithDescription("List the devices on a Govee cloud account"),
			apiKey,
		),
		s.invokeCloud("govee_cloud_devices"),
	)

	s.addTool(
		mcp.NewTool("cloud_control",
			mcp.WithDescription("Control a device through the Govee cloud API"),
			apiKey,
			mcp.WithString("device", mcp.Required(), mcp.Description("Device ID as listed by cloud_devices")),
			mcp.WithString("model", mcp.Required(), mcp.Description("Device model (SKU)")),
			mcp.WithObject("cmd",
				mcp.Required(),
				mcp.Description("Cloud command, e.g. {\"name\":\"turn\",\"value\":\"on\"}"),
			),
		),
		s.invokeCloud("govee_cloud_control"),
	)

	s.addTool(
		mcp.NewTool("cloud_state",
			mcp.WithDescription("Get a device's state through the Govee cloud API"),
			apiKey,
			mcp.WithString("device", mcp.Required(), mcp.Description("Device ID as listed by cloud_devices")),
			mcp.WithString("model", mcp.Required(), mcp.Description("Device model (SKU)")),
		),
		s.invokeCloud("govee_cloud_state"),
	)

	// System
	s.addTool(
		mcp.NewTool("radio_scan",
			mcp.WithDescription("Scan for nearby Bluetooth LE devices such as room sensors"),
			mcp.WithNumber("timeout_ms",
				mcp.Description("Scan duration in milliseconds (default 5000)"),
			),
		),
		s.invoke("roomsense_scan"),
	)

	s.addTool(
		mcp.NewTool("wifi_status",
			mcp.WithDescription("Report whether the bridge host is connected to a Wi-Fi network"),
		),
		s.invoke("is_wifi_connected"),
	)
}
