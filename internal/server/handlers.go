package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/config"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/glyph"
	imgutil "github.com/anhlbt/TextRecognitionDataGenerator/internal/imaging"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/mask"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "text_render", "mask_boxes").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "text_render":
		return s.handleTextRender(ctx, args)
	case "text_render_save":
		return s.handleTextRenderSave(ctx, args)
	case "mask_boxes":
		return s.handleMaskBoxes(args)
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

// === Render Handlers ===

// renderArgs decodes tool arguments on top of the server defaults. Fields
// absent from the JSON keep their default values.
func (s *Server) renderArgs(args json.RawMessage) (config.File, error) {
	f := s.defaults
	if len(args) > 0 {
		if err := json.Unmarshal(args, &f); err != nil {
			return config.File{}, err
		}
	}
	if f.Text == "" {
		return config.File{}, errors.New("text is required")
	}
	return f, nil
}

// render runs the pipeline for f and returns the result and the seed used.
func (s *Server) render(ctx context.Context, f config.File) (*pipeline.Result, int64, error) {
	req, err := f.Request(s.cache)
	if err != nil {
		return nil, 0, err
	}
	seed := f.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	res, err := s.pipeline.Render(ctx, req, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, seed, err
	}
	return res, seed, nil
}

// RenderResult is the result of text_render.
type RenderResult struct {
	Outcome pipeline.Outcome      `json:"outcome"`
	Seed    int64                 `json:"seed"`
	Text    string                `json:"text"`
	Name    string                `json:"name,omitempty"`
	Units   []glyph.Unit          `json:"units"`
	Boxes   []mask.Box            `json:"boxes,omitempty"`
	Image   *imgutil.EncodedImage `json:"image,omitempty"`
	Mask    *imgutil.EncodedImage `json:"mask,omitempty"`
}

func (s *Server) handleTextRender(ctx context.Context, args json.RawMessage) (interface{}, error) {
	f, err := s.renderArgs(args)
	if err != nil {
		return nil, err
	}
	res, seed, err := s.render(ctx, f)
	if err != nil {
		return nil, err
	}

	out := &RenderResult{
		Outcome: res.Outcome,
		Seed:    seed,
		Text:    res.Text,
		Name:    res.Name,
		Units:   res.Units,
		Boxes:   res.Boxes,
	}
	if !res.Outcome.Accepted {
		return out, nil
	}

	if out.Image, err = imgutil.EncodePNGBase64(res.Image); err != nil {
		return nil, err
	}
	if f.Output.Mask && res.Mask != nil {
		m, err := res.Mask.Image()
		if err != nil {
			return nil, err
		}
		if out.Mask, err = imgutil.EncodePNGBase64(m); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type renderSaveArgs struct {
	OutDir string `json:"out_dir"`
}

// SaveResult is the result of text_render_save.
type SaveResult struct {
	Outcome pipeline.Outcome `json:"outcome"`
	Seed    int64            `json:"seed"`
	Text    string           `json:"text"`
	Name    string           `json:"name,omitempty"`
	Paths   []string         `json:"paths,omitempty"`
}

func (s *Server) handleTextRenderSave(ctx context.Context, args json.RawMessage) (interface{}, error) {
	f, err := s.renderArgs(args)
	if err != nil {
		return nil, err
	}
	var a renderSaveArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	dir := a.OutDir
	if dir == "" {
		dir = f.Output.Dir
	}
	if dir == "" {
		return nil, errors.New("out_dir is required")
	}

	res, seed, err := s.render(ctx, f)
	if err != nil {
		return nil, err
	}

	out := &SaveResult{Outcome: res.Outcome, Seed: seed, Text: res.Text, Name: res.Name}
	if !res.Outcome.Accepted {
		return out, nil
	}
	if out.Paths, err = pipeline.Emit(res, dir); err != nil {
		return nil, err
	}
	// A save may overwrite an image cached as a background.
	for _, p := range out.Paths {
		s.cache.Evict(p)
	}
	s.log.Info("sample saved", zap.String("name", res.Name), zap.Strings("paths", out.Paths))
	return out, nil
}

// === Mask Handlers ===

type maskBoxesArgs struct {
	Path string   `json:"path"`
	IDs  []uint32 `json:"ids"`
	// FlipY reports y from the bottom of the image, as in tesseract box files.
	FlipY bool `json:"flip_y"`
}

// MaskBoxesResult is the result of mask_boxes.
type MaskBoxesResult struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Boxes  []mask.Box `json:"boxes"`
}

func (s *Server) handleMaskBoxes(args json.RawMessage) (interface{}, error) {
	var a maskBoxesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	// Masks are read fresh: a later save may overwrite the same path.
	img, err := imgutil.LoadImage(a.Path)
	if err != nil {
		return nil, err
	}
	m, err := mask.FromImage(img)
	if err != nil {
		return nil, err
	}

	ids := a.IDs
	if len(ids) == 0 {
		for id := range m.Count() {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	boxes := mask.Decode(m, ids)
	if a.FlipY {
		for i, b := range boxes {
			boxes[i] = b.FlipY(m.Height)
		}
	}
	return &MaskBoxesResult{Width: m.Width, Height: m.Height, Boxes: boxes}, nil
}
