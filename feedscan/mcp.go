// CLAUDE:SUMMARY Registers the feedscan MCP tools: toggle the in-feed search and read its status.
package feedscan

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/feedscan/kit"
)

// RegisterMCP registers feedscan tools on an MCP server.
func (s *Searcher) RegisterMCP(srv *mcp.Server) {
	s.registerToggleTool(srv)
	s.registerStatusTool(srv)
}

func (s *Searcher) registerToggleTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "feedscan_toggle",
		Description: "Start, pause or resume the in-feed search. Starting or resuming searches the feed below the current viewport center for the text; pausing ignores it.",
		InputSchema: kit.ObjectSchema(map[string]any{
			"text": map[string]any{"type": "string", "description": "Search term (case-insensitive substring)"},
		}, nil),
	}

	endpoint := kit.Chain(kit.Logging(s.logger, "feedscan_toggle"))(func(ctx context.Context, req any) (any, error) {
		r := req.(*toggleRequest)
		return s.Toggle(ctx, r.Text)
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r toggleRequest
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (s *Searcher) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "feedscan_status",
		Description: "Current in-feed search status: state, query, cursor, ticks and last result.",
		InputSchema: kit.ObjectSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return s.Status(), nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
