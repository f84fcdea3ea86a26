package badge

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/tabbadge/kit"
)

// RegisterMCP registers the badge tools on an MCP server, so an agent can
// drive the tab badge of the session's document.
func (b *Badger) RegisterMCP(srv *mcp.Server) {
	b.registerSetTool(srv)
	b.registerClearTool(srv)
	b.registerStatusTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- set ---

type setRequest struct {
	Count           *int   `json:"count,omitempty"`
	Indicator       bool   `json:"indicator,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	Color           string `json:"color,omitempty"`
	IndicatorGlyph  string `json:"indicator_glyph,omitempty"`
}

type setResponse struct {
	Installed bool `json:"installed"`
}

func (b *Badger) registerSetTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabbadge_set",
		Description: "Overlay a count or indicator badge on the page favicon. Count 0 restores the plain icon look without clearing the session.",
		InputSchema: inputSchema(map[string]any{
			"count":            map[string]any{"type": "integer", "description": "Badge count; 0 hides the badge, above 99 shows 99+"},
			"indicator":        map[string]any{"type": "boolean", "description": "Show the indicator glyph instead of a count"},
			"background_color": map[string]any{"type": "string", "description": "Badge background, e.g. #424242"},
			"color":            map[string]any{"type": "string", "description": "Badge text color, e.g. #ffffff"},
			"indicator_glyph":  map[string]any{"type": "string", "description": "Single glyph for indicator mode"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*setRequest)
		v := Indicator()
		if !r.Indicator && r.Count != nil {
			v = Count(*r.Count)
		}
		patch := &OptionPatch{
			BackgroundColor: r.BackgroundColor,
			Color:           r.Color,
			Indicator:       r.IndicatorGlyph,
		}
		return setResponse{Installed: b.Set(ctx, v, patch)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r setRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- clear ---

type clearResponse struct {
	Cleared bool `json:"cleared"`
}

func (b *Badger) registerClearTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabbadge_clear",
		Description: "Remove the badge and restore the page's original favicon links.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		b.Clear(ctx)
		return clearResponse{Cleared: true}, nil
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		return struct{}{}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- status ---

type statusResponse struct {
	Available bool    `json:"available"`
	State     string  `json:"state"`
	Value     string  `json:"value"`
	Options   Options `json:"options"`
}

func (b *Badger) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabbadge_status",
		Description: "Report badge availability, the current value, and the merged options.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		avail := b.Availability(ctx)
		return statusResponse{
			Available: avail == AvailabilityOK,
			State:     avail.String(),
			Value:     b.CurrentValue().String(),
			Options:   b.Options(),
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		return struct{}{}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
