// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"piimerge/internal/merge"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	engine, err := merge.New(merge.DefaultConfig())
	require.NoError(t, err)
	return New(engine, nil)
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = ToolMerge
	req.Params.Arguments = args
	return req
}

func decode(t *testing.T, result *mcp.CallToolResult) Response {
	t.Helper()
	require.NotNil(t, result)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	return resp
}

func TestMergeTool(t *testing.T) {
	s := newServer(t)

	// arguments as they arrive after JSON decoding
	var args map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"text": "DOB: 01/15/1970",
		"document_id": "note-7",
		"predictions": [
			{"start": 5, "end": 7, "entity_type": "date", "score": 0.71},
			{"start": 7, "end": 15, "entity_type": "date_of_birth", "score": 0.751}
		]
	}`), &args))

	result, err := s.handleMerge(context.Background(), call(args))
	require.NoError(t, err)

	resp := decode(t, result)
	require.Len(t, resp.Entities, 1)
	assert.Equal(t, "01/15/1970", resp.Entities[0].Text)
	assert.Equal(t, "date_of_birth", resp.Entities[0].Label)
	assert.Empty(t, resp.Warnings)
}

func TestMergeToolReportsInvalidSpans(t *testing.T) {
	result, err := newServer(t).handleMerge(context.Background(), call(map[string]interface{}{
		"text": "Jane",
		"predictions": []interface{}{
			map[string]interface{}{"start": 0, "end": 4, "entity_type": "first_name", "score": 0.9},
			map[string]interface{}{"start": 2, "end": 40, "entity_type": "x", "score": 0.9},
		},
	}))
	require.NoError(t, err)

	resp := decode(t, result)
	assert.Len(t, resp.Entities, 1)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "out_of_bounds")
}

func TestMergeToolBadArguments(t *testing.T) {
	s := newServer(t)

	result, err := s.handleMerge(context.Background(), call(map[string]interface{}{"text": 42}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleMerge(context.Background(), call(map[string]interface{}{
		"text":        "x",
		"predictions": "not a list",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestScanTool(t *testing.T) {
	result, err := newServer(t).handleScan(context.Background(), call(map[string]interface{}{
		"text": "SSN: 123-45-6789",
	}))
	require.NoError(t, err)

	resp := decode(t, result)
	require.Len(t, resp.Entities, 1)
	assert.Equal(t, "ssn", resp.Entities[0].Label)

	result, err = newServer(t).handleScan(context.Background(), call(map[string]interface{}{"text": "nothing"}))
	require.NoError(t, err)
	assert.Empty(t, decode(t, result).Entities)
}

func TestMCPServerRegistered(t *testing.T) {
	assert.NotNil(t, newServer(t).MCPServer())
}
