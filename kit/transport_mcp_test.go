package kit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testImpl = &mcp.Implementation{Name: "kit-test", Version: "0.1.0"}

type echoRequest struct {
	Text string `json:"text"`
}

func echoSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testImpl, nil)

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*echoRequest)
		if r.Text == "" {
			return nil, errors.New("empty text")
		}
		return map[string]string{"text": r.Text, "transport": GetTransport(ctx)}, nil
	}
	decode := func(req *mcp.CallToolRequest) (*MCPDecodeResult, error) {
		var r echoRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &MCPDecodeResult{Request: &r}, nil
	}
	RegisterMCPTool(srv, &mcp.Tool{
		Name:        "echo",
		Description: "Echo the text.",
		InputSchema: ObjectSchema(map[string]any{
			"text": map[string]any{"type": "string"},
		}, nil),
	}, endpoint, decode)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestRegisterMCPTool_Success(t *testing.T) {
	session := echoSession(t)
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"text": "cats"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", res.Content[0])
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(tc.Text), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["text"] != "cats" || got["transport"] != "mcp" {
		t.Errorf("got %v", got)
	}
}

func TestRegisterMCPTool_EndpointError(t *testing.T) {
	session := echoSession(t)
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"text": ""},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected IsError for empty text")
	}
}

func TestObjectSchema(t *testing.T) {
	s := ObjectSchema(map[string]any{"a": map[string]any{"type": "string"}}, []string{"a"})
	if s["type"] != "object" {
		t.Errorf("type: got %v", s["type"])
	}
	if req, ok := s["required"].([]string); !ok || len(req) != 1 {
		t.Errorf("required: got %v", s["required"])
	}
	if _, ok := ObjectSchema(nil, nil)["required"]; ok {
		t.Error("required set without fields")
	}
}
