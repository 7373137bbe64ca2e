// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package mcpserver exposes the merge engine as Model Context Protocol tools
// over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"piimerge/internal/detector"
	"piimerge/internal/merge"
	"piimerge/internal/observability"
	"piimerge/internal/version"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Tool names
const (
	ToolMerge = "merge_pii_entities"
	ToolScan  = "scan_pii_patterns"
)

// Server wraps an MCP server around one engine
type Server struct {
	engine   *merge.Engine
	observer *observability.StandardObserver
	mcp      *server.MCPServer
}

// Response is the JSON payload of a successful tool call
type Response struct {
	Entities []detector.Entity `json:"entities"`

	// Warnings lists dropped predictions
	Warnings []string `json:"warnings,omitempty"`
}

// New registers the tools. observer may be nil.
func New(engine *merge.Engine, observer *observability.StandardObserver) *Server {
	if observer == nil {
		observer = observability.NewNopObserver()
	}
	s := &Server{
		engine:   engine,
		observer: observer.Named("mcp"),
		mcp: server.NewMCPServer("piimerge", version.Short(),
			server.WithToolCapabilities(false),
		),
	}

	s.mcp.AddTool(mcp.NewTool(ToolMerge,
		mcp.WithDescription("Reconstruct whole PII entities from fragment-level model predictions. "+
			"Offsets are character offsets into text; the result is sorted and non-overlapping."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Source text the predictions refer to")),
		mcp.WithArray("predictions", mcp.Description(
			`Model predictions: [{"start": 5, "end": 7, "entity_type": "date", "score": 0.71}, ...]`)),
		mcp.WithString("document_id", mcp.Description("Optional identifier used in logs")),
	), s.handleMerge)

	s.mcp.AddTool(mcp.NewTool(ToolScan,
		mcp.WithDescription("Find PII in text with the pattern catalogue alone"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to scan")),
	), s.handleScan)

	return s
}

// MCPServer returns the underlying server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves requests on stdin/stdout until EOF or a signal
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleMerge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments

	text, ok := args["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text must be a string"), nil
	}
	in := detector.Input{Text: text}
	if id, ok := args["document_id"].(string); ok {
		in.ID = id
	}

	if raw, present := args["predictions"]; present && raw != nil {
		// Round-trip through JSON to accept any decoded shape
		data, err := json.Marshal(raw)
		if err == nil {
			err = json.Unmarshal(data, &in.Predictions)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid predictions: %v", err)), nil
		}
	}

	entities, err := s.engine.MergeDocument(in)
	resp := Response{Entities: entities, Warnings: detector.Warnings(err)}
	return s.result(resp)
}

func (s *Server) handleScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := request.Params.Arguments["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text must be a string"), nil
	}
	return s.result(Response{Entities: s.engine.Scan(text)})
}

func (s *Server) result(resp Response) (*mcp.CallToolResult, error) {
	if resp.Entities == nil {
		resp.Entities = []detector.Entity{}
	}
	data, err := json.Marshal(resp)
	if err != nil {
		s.observer.Warn("failed to encode tool result", zap.Error(err))
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
