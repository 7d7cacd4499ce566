package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/muurk/lightbridge/internal/commands"
)

// invoke returns a tool handler that passes the tool arguments to a command
func (s *Server) invoke(command string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.run(ctx, command, request.GetArguments())
	}
}

// invokeCloud is invoke with the configured API key filled in when the
// caller gave none.
func (s *Server) invokeCloud(command string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if key, _ := args["api_key"].(string); key == "" && s.cloudAPIKey != "" {
			merged := make(map[string]any, len(args)+1)
			for k, v := range args {
				merged[k] = v
			}
			merged["api_key"] = s.cloudAPIKey
			args = merged
		}
		return s.run(ctx, command, args)
	}
}

func (s *Server) run(ctx context.Context, command string, args map[string]any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %s", err)), nil
	}

	result, err := s.registry.Invoke(ctx, command, raw)
	if err != nil {
		return mcp.NewToolResultError(commands.ErrorString(err)), nil
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
