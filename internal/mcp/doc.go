// Package mcp serves the bridge's commands as Model Context Protocol tools
// over stdio, so assistants can discover and control lights.
//
// Tool arguments use the same names as the command registry. Failures are
// returned as tool errors carrying a short human-readable message, never as
// protocol errors. Nothing in this package writes to stdout except the MCP
// transport itself; configure logging to stderr.
package mcp
