// Package mcp exposes the document pipeline as Model Context Protocol tools
// over stdio.
package mcp

import "errors"

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("mcp: all services are required")
