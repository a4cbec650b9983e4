package kit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCPTool registers an Endpoint as an MCP tool on the given server.
// decode extracts the typed request from the raw tool arguments. Endpoint
// failures become tool errors, never protocol errors, so a failing call
// leaves the session usable.
func RegisterMCPTool(srv *mcp.Server, tool *mcp.Tool, endpoint Endpoint, decode func(*mcp.CallToolRequest) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		decoded, err := decode(req)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}

		resp, err := endpoint(WithTransport(ctx, "mcp"), decoded)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

// DecodeArgs unmarshals tool arguments into a value of type T.
func DecodeArgs[T any](req *mcp.CallToolRequest) (*T, error) {
	var v T
	if err := json.Unmarshal(req.Params.Arguments, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
