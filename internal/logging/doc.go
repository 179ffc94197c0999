// Package logging provides file-based logging with rotation for patchbay.
// CLI commands log to stderr; the MCP server logs to ~/.patchbay/logs/ so
// that the stdio transport keeps stdout reserved for the protocol stream.
package logging
