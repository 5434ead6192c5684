package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"time"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
	"github.com/pixelproof/svgbbox-mcp/internal/raster"
	"github.com/pixelproof/svgbbox-mcp/internal/scan"
	"github.com/pixelproof/svgbbox-mcp/internal/sprite"
	"github.com/pixelproof/svgbbox-mcp/internal/svg"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "svg_bbox", "svg_render_crop").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies documented defaults for optional parameters
//  3. Loads and parses documents from the cache as needed
//  4. Runs the scan engine or geometry function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Document loading
	case "svg_load":
		return s.handleSVGLoad(args)

	// Bounding box scans
	case "svg_bbox":
		return s.handleSVGBBox(args)
	case "svg_bbox_multi":
		return s.handleSVGBBoxMulti(args)
	case "svg_bbox_sprites":
		return s.handleSVGBBoxSprites(args)

	// Crop export
	case "svg_render_crop":
		return s.handleSVGRenderCrop(args)

	// Coordinate helpers
	case "bbox_transform":
		return s.handleBBoxTransform(args)
	case "bbox_union":
		return s.handleBBoxUnion(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared scan arguments ===

// scanArgs are the options every scanning tool accepts, with documented
// defaults applied by options(). Only path is required.
type scanArgs struct {
	Path          string  `json:"path"`
	Target        string  `json:"target,omitempty"`
	Mode          string  `json:"mode,omitempty"`           // "full" (default) or "clipped"
	CoarseDensity float64 `json:"coarse_density,omitempty"` // samples/unit, default 2
	FineDensity   float64 `json:"fine_density,omitempty"`   // samples/unit, default 10
	Margin        float64 `json:"margin,omitempty"`         // document units, default 0
	Background    string  `json:"background,omitempty"`     // "transparent" (default) or a color
	Threshold     *int    `json:"threshold,omitempty"`      // 0-255, default 8
	GlobalOnly    bool    `json:"global_only,omitempty"`
	TimeoutMS     int     `json:"timeout_ms,omitempty"` // render deadline, default none
}

// options maps JSON arguments onto scan.Options, leaving absent fields at
// their documented defaults.
func (a scanArgs) options() (scan.Options, error) {
	opts := scan.DefaultOptions()

	mode, err := scan.ParseMode(a.Mode)
	if err != nil {
		return scan.Options{}, err
	}
	opts.Mode = mode

	if a.CoarseDensity > 0 {
		opts.CoarseDensity = a.CoarseDensity
	}
	if a.FineDensity > 0 {
		opts.FineDensity = a.FineDensity
	}
	if a.Margin > 0 {
		opts.MarginUnits = a.Margin
	}
	if a.Threshold != nil {
		if *a.Threshold < 0 || *a.Threshold > 255 {
			return scan.Options{}, fmt.Errorf("threshold %d out of range 0-255", *a.Threshold)
		}
		opts.BackgroundThreshold = uint8(*a.Threshold)
	}
	opts.GlobalOnly = a.GlobalOnly

	if a.Background != "" && a.Background != "transparent" {
		c, err := svg.ParseColor(a.Background)
		if err != nil {
			return scan.Options{}, fmt.Errorf("bad background: %w", err)
		}
		if c == nil {
			return scan.Options{}, fmt.Errorf("background %q does not name a color", a.Background)
		}
		r, g, b, _ := c.RGBA()
		opts.Background = raster.Background{
			Color: color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255},
		}
	}

	return opts, nil
}

// scanContext returns the context for one tool invocation, honoring an
// optional render deadline.
func (a scanArgs) scanContext() (context.Context, context.CancelFunc) {
	if a.TimeoutMS > 0 {
		return context.WithTimeout(context.Background(), time.Duration(a.TimeoutMS)*time.Millisecond)
	}
	return context.Background(), func() {}
}

// === Document Loading Handlers ===

type svgLoadResult struct {
	Width        float64    `json:"width"`
	Height       float64    `json:"height"`
	ViewBox      *geom.BBox `json:"view_box,omitempty"`
	ElementCount int        `json:"element_count"`
	IDs          []string   `json:"ids,omitempty"`
}

func (s *Server) handleSVGLoad(args json.RawMessage) (interface{}, error) {
	var a struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return &svgLoadResult{
		Width:        doc.Width,
		Height:       doc.Height,
		ViewBox:      doc.ViewBox,
		ElementCount: len(doc.Elements),
		IDs:          doc.IDs(),
	}, nil
}

// === Bounding Box Scan Handlers ===

func (s *Server) handleSVGBBox(args json.RawMessage) (interface{}, error) {
	var a scanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	doc, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	ctx, cancel := a.scanContext()
	defer cancel()

	return s.newEngine().Scan(ctx, doc, a.Target, opts)
}

type multiArgs struct {
	scanArgs
	Targets []string `json:"targets"`
}

type multiResult struct {
	Targets   map[string]*scan.Result `json:"targets"`
	Aggregate *scan.Box               `json:"aggregate,omitempty"`
}

func (s *Server) handleSVGBBoxMulti(args json.RawMessage) (interface{}, error) {
	var a multiArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Targets) == 0 {
		return nil, fmt.Errorf("targets must name at least one element id")
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	doc, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	ctx, cancel := a.scanContext()
	defer cancel()

	results, err := sprite.MultiScan(ctx, s.newEngine, doc, a.Targets, opts)
	if err != nil {
		return nil, err
	}
	out := &multiResult{Targets: results}
	if agg, ok := sprite.Aggregate(results); ok {
		out.Aggregate = &agg
	}
	return out, nil
}

type spriteGroupResult struct {
	Members   map[string]*scan.Result `json:"members"`
	Aggregate scan.Box                `json:"aggregate"`
}

type spritesResult struct {
	Groups       map[string]spriteGroupResult `json:"groups"`
	WholeContent *scan.Result                 `json:"whole_content"`
}

func (s *Server) handleSVGBBoxSprites(args json.RawMessage) (interface{}, error) {
	var a scanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	doc, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	ctx, cancel := a.scanContext()
	defer cancel()

	groups := sprite.Groups(doc.IDs())
	out := &spritesResult{Groups: make(map[string]spriteGroupResult, len(groups))}

	for prefix, members := range groups {
		results, err := sprite.MultiScan(ctx, s.newEngine, doc, members, opts)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", prefix, err)
		}
		agg, _ := sprite.Aggregate(results)
		out.Groups[prefix] = spriteGroupResult{Members: results, Aggregate: agg}
	}

	whole, err := s.newEngine().Scan(ctx, doc, "", opts)
	if err != nil {
		return nil, err
	}
	out.WholeContent = whole
	return out, nil
}

// === Crop Export Handler ===

type renderCropArgs struct {
	scanArgs
	Density float64 `json:"density,omitempty"` // render density, default fine density
	Scale   float64 `json:"scale,omitempty"`   // output scale factor, default 1.0
}

func (s *Server) handleSVGRenderCrop(args json.RawMessage) (interface{}, error) {
	var a renderCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	doc, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	ctx, cancel := a.scanContext()
	defer cancel()

	res, err := s.newEngine().Scan(ctx, doc, a.Target, opts)
	if err != nil {
		return nil, err
	}

	density := a.Density
	if density <= 0 {
		density = opts.FineDensity
	}
	scale := a.Scale
	if scale == 0 {
		scale = 1.0
	}
	return raster.CropToBox(ctx, raster.NewSoftware(), doc, res.Global.BBox, density, scale, opts.Background)
}

// === Coordinate Helper Handlers ===

type bboxTransformArgs struct {
	Box       geom.BBox   `json:"box"`
	Matrix    geom.Matrix `json:"matrix"`
	Direction string      `json:"direction"` // "to_local" or "to_global"
}

type bboxTransformResult struct {
	Space string    `json:"space"`
	Box   geom.BBox `json:"box"`
}

func (s *Server) handleBBoxTransform(args json.RawMessage) (interface{}, error) {
	var a bboxTransformArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	switch a.Direction {
	case "to_global":
		return &bboxTransformResult{Space: "global", Box: geom.ToGlobal(a.Box, a.Matrix)}, nil
	case "to_local":
		local, err := geom.ToLocal(a.Box, a.Matrix)
		if err != nil {
			return nil, err
		}
		return &bboxTransformResult{Space: "local", Box: local}, nil
	}
	return nil, fmt.Errorf("direction must be to_local or to_global, got %q", a.Direction)
}

type bboxUnionArgs struct {
	Boxes []geom.BBox `json:"boxes"`
}

func (s *Server) handleBBoxUnion(args json.RawMessage) (interface{}, error) {
	var a bboxUnionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	env, ok := geom.UnionAll(a.Boxes)
	if !ok {
		return nil, fmt.Errorf("boxes must contain at least one box")
	}
	return env, nil
}
