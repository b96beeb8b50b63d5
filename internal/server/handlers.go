package server

import (
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/ironsheep/mask-tools-mcp/internal/geometry"
	"github.com/ironsheep/mask-tools-mcp/internal/imaging"
	"github.com/ironsheep/mask-tools-mcp/internal/mask"
	"github.com/ironsheep/mask-tools-mcp/internal/selection"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mask_build", "edge_snap").
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

	result, err := runTool(params.Name, func() (interface{}, error) {
		return s.executeTool(params.Name, params.Arguments)
	})
	if err != nil {
		if s.cfg.Debug() {
			log.Printf("Tool %s failed: %v", params.Name, err)
		}
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

// runTool calls fn, turning a panic into an error so that one bad request
// cannot take down the server.
func runTool(name string, fn func() (interface{}, error)) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Tool %s panicked: %v\n%s", name, r, debug.Stack())
			result, err = nil, fmt.Errorf("tool %s panicked: %v", name, r)
		}
	}()
	return fn()
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Fills optional parameters from the server configuration
//  3. Loads images from cache or reads the selection model as needed
//  4. Calls the appropriate imaging/mask function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Image
	case "image_load":
		return s.handleImageLoad(args)

	// Selection
	case "selection_add_rectangle":
		return s.handleSelectionAddRectangle(args)
	case "selection_add_stroke":
		return s.handleSelectionAddStroke(args)
	case "selection_remove":
		return s.handleSelectionRemove(args)
	case "selection_list":
		return s.handleSelectionList()
	case "selection_clear":
		return s.handleSelectionClear()

	// Mask
	case "mask_build":
		return s.handleMaskBuild(args)
	case "mask_preview":
		return s.handleMaskPreview(args)

	// Edges
	case "edge_snap":
		return s.handleEdgeSnap(args)
	case "edge_map":
		return s.handleEdgeMap(args)

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

// maskOptions returns the server's compositing defaults with any per-call
// overrides applied.
func (s *Server) maskOptions(expansionRatio, strokeWidth float64, binary bool) mask.Options {
	opts := mask.Options{
		ExpansionRatio:     s.cfg.ExpansionRatio,
		DefaultStrokeWidth: s.cfg.DefaultStrokeWidth,
		Binary:             binary,
	}
	if expansionRatio > 0 {
		opts.ExpansionRatio = expansionRatio
	}
	if strokeWidth > 0 {
		opts.DefaultStrokeWidth = strokeWidth
	}
	return opts
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Selection Handlers ===

// SelectionChange reports the outcome of adding to or clearing the
// selection. ID is zero after a clear.
type SelectionChange struct {
	ID    selection.ID `json:"id,omitempty"`
	Count int          `json:"count"`
}

// SelectionRemoval reports the outcome of selection_remove.
type SelectionRemoval struct {
	Removed bool `json:"removed"`
	Count   int  `json:"count"`
}

// SelectionEntry describes one primitive in a SelectionListing.
type SelectionEntry struct {
	ID        selection.ID        `json:"id"`
	Kind      selection.Kind      `json:"kind"`
	Bounds    geometry.Rect       `json:"bounds"`
	Primitive selection.Primitive `json:"primitive"`
}

// SelectionListing is the current selection in compositing order.
type SelectionListing struct {
	Count   int                `json:"count"`
	Entries []SelectionEntry   `json:"entries"`
	Regions []selection.Region `json:"regions"`
}

type selectionAddRectangleArgs struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	RegionID *int    `json:"region_id"`
}

func (s *Server) handleSelectionAddRectangle(args json.RawMessage) (interface{}, error) {
	var a selectionAddRectangleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r := selection.Rectangle{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height, RegionID: a.RegionID}
	return s.addPrimitive(r)
}

type selectionAddStrokeArgs struct {
	Commands    []selection.PathCommand `json:"commands"`
	StrokeWidth float64                 `json:"stroke_width"`
}

func (s *Server) handleSelectionAddStroke(args json.RawMessage) (interface{}, error) {
	var a selectionAddStrokeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	st := selection.FreehandStroke{Commands: a.Commands, StrokeWidth: a.StrokeWidth}
	return s.addPrimitive(st)
}

// addPrimitive rejects primitives that could never be rasterized so the
// caller hears about them at draw time rather than at build time.
func (s *Server) addPrimitive(p selection.Primitive) (*SelectionChange, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", p.Kind(), err)
	}
	id := s.selection.Add(p)
	if s.cfg.Debug() {
		log.Printf("Added %s %d", p.Kind(), id)
	}
	return &SelectionChange{ID: id, Count: s.selection.Len()}, nil
}

type selectionRemoveArgs struct {
	ID selection.ID `json:"id"`
}

func (s *Server) handleSelectionRemove(args json.RawMessage) (interface{}, error) {
	var a selectionRemoveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	removed := s.selection.Remove(a.ID)
	return &SelectionRemoval{Removed: removed, Count: s.selection.Len()}, nil
}

func (s *Server) handleSelectionList() (interface{}, error) {
	entries := s.selection.Entries()
	out := &SelectionListing{
		Count:   len(entries),
		Entries: make([]SelectionEntry, 0, len(entries)),
		Regions: s.selection.Regions(),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, SelectionEntry{
			ID:        e.ID,
			Kind:      e.Primitive.Kind(),
			Bounds:    e.Primitive.Bounds(),
			Primitive: e.Primitive,
		})
	}
	if out.Regions == nil {
		out.Regions = []selection.Region{}
	}
	return out, nil
}

func (s *Server) handleSelectionClear() (interface{}, error) {
	s.selection.Clear()
	return &SelectionChange{Count: 0}, nil
}

// === Mask Handlers ===

type maskBuildArgs struct {
	Geometry           *geometry.Layer `json:"geometry"`
	ExpansionRatio     float64         `json:"expansion_ratio"`
	DefaultStrokeWidth float64         `json:"default_stroke_width"`
	Binary             bool            `json:"binary"`
}

func (s *Server) handleMaskBuild(args json.RawMessage) (interface{}, error) {
	var a maskBuildArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.maskOptions(a.ExpansionRatio, a.DefaultStrokeWidth, a.Binary)
	m, err := mask.BuildMask(s.selection.Snapshot(), a.Geometry, opts)
	if err != nil {
		return nil, err
	}
	return mask.Encode(m)
}

type maskPreviewArgs struct {
	Path     string          `json:"path"`
	Geometry *geometry.Layer `json:"geometry"`
	Color    string          `json:"color"`
	Opacity  float64         `json:"opacity"`
}

func (s *Server) handleMaskPreview(args json.RawMessage) (interface{}, error) {
	var a maskPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = s.cfg.PreviewColor
	}
	if a.Opacity <= 0 {
		a.Opacity = s.cfg.PreviewOpacity
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	layer := a.Geometry
	if layer == nil {
		l := imaging.LayerFor(img)
		layer = &l
	}

	m, err := mask.BuildMask(s.selection.Snapshot(), layer, s.maskOptions(0, 0, false))
	if err != nil {
		return nil, err
	}
	return mask.Preview(img, m, a.Color, a.Opacity)
}

// === Edge Handlers ===

type edgeSnapArgs struct {
	Path      string  `json:"path"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    int      `json:"radius"`
	Threshold *float64 `json:"threshold"`
}

func (s *Server) handleEdgeSnap(args json.RawMessage) (interface{}, error) {
	var a edgeSnapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Radius <= 0 {
		a.Radius = s.cfg.SnapRadius
	}
	if a.Radius > imaging.MaxSnapRadius {
		a.Radius = imaging.MaxSnapRadius
	}
	threshold := s.cfg.SnapThreshold
	if a.Threshold != nil {
		threshold = *a.Threshold
		if threshold <= 0 {
			threshold = imaging.AnyGradient
		}
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	res := imaging.FindNearestEdge(img, geometry.Point{X: a.X, Y: a.Y}, imaging.SnapOptions{
		Radius:    a.Radius,
		Threshold: threshold,
	})
	return &res, nil
}

type edgeMapArgs struct {
	Path   string  `json:"path"`
	Smooth float64 `json:"smooth"`
}

func (s *Server) handleEdgeMap(args json.RawMessage) (interface{}, error) {
	var a edgeMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.RenderEdgeMap(img, a.Smooth)
}
