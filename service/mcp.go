package service

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pressops/docsmith/kit"
)

// RegisterMCP registers the conversion tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerExtractText(srv)
	s.registerFormatText(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (s *Service) registerExtractText(srv *mcp.Server) {
	type req struct {
		Path string `json:"path"`
	}

	tool := &mcp.Tool{
		Name:        "docsmith_extract_text",
		Description: "Extract reflowed text from a PDF on disk (text layer, OCR fallback)",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "Path to the PDF file"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		res, err := s.acquirer.Acquire(ctx, p.Path)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"text":   s.formatter.FormatLines(res.Lines),
			"source": string(res.Path),
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, func(r *mcp.CallToolRequest) (any, error) {
		return kit.DecodeArgs[req](r)
	})
}

func (s *Service) registerFormatText(srv *mcp.Server) {
	type req struct {
		Text string `json:"text"`
	}

	tool := &mcp.Tool{
		Name:        "docsmith_format_text",
		Description: "Reflow raw line-broken text into paragraphs, headings and bullets",
		InputSchema: inputSchema(map[string]any{
			"text": map[string]any{"type": "string", "description": "Raw text to reflow"},
		}, []string{"text"}),
	}

	endpoint := func(_ context.Context, r any) (any, error) {
		p := r.(*req)
		return map[string]string{"text": s.formatter.Format(p.Text)}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, func(r *mcp.CallToolRequest) (any, error) {
		return kit.DecodeArgs[req](r)
	})
}
