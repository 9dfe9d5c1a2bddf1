// Package tools implements the MCP tool handlers.
//
// Each tool is a struct holding the shared session, exposing a
// Definition() for catalog registration and a Handle method for
// dispatch. Arguments are bound into tagged structs and validated in
// one pass before any network call; every failure is normalized at
// this boundary into an error result carrying a machine-readable code
// and a human-readable message.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/errs"
)

// errorResult translates any handler error into the uniform error
// envelope. AppError codes pass through; everything else is reported
// as a remote fault.
func errorResult(err error) *mcp.CallToolResult {
	if appErr, ok := err.(errs.AppError); ok {
		return mcp.NewToolResultError(appErr.Error())
	}
	return mcp.NewToolResultError(errs.CodeRemote + ": " + err.Error())
}

// invalidArgument reports a caller fault naming the offending field.
func invalidArgument(format string, args ...any) *mcp.CallToolResult {
	return errorResult(errs.InvalidArgument(format, args...))
}
