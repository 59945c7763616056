package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/comic-panels/internal/config"
	"github.com/ironsheep/comic-panels/internal/extract"
	"github.com/ironsheep/comic-panels/internal/imaging"
	"github.com/ironsheep/comic-panels/internal/panels"
	"github.com/ironsheep/comic-panels/internal/segment"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "panels_detect").
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
// Malformed or invalid arguments return -32602. Other tool failures return
// a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var argErr *argumentError
		if errors.As(err, &argErr) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
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
	case "image_load":
		return s.handleImageLoad(args)
	case "image_unload":
		return s.handleImageUnload(args)
	case "panels_detect":
		return s.handlePanelsDetect(args)
	case "panels_extract":
		return s.handlePanelsExtract(ctx, args)
	case "panels_preview":
		return s.handlePanelsPreview(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// argumentError marks a tool failure caused by the caller's arguments.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string { return e.err.Error() }
func (e *argumentError) Unwrap() error { return e.err }

func badArgs(err error) error {
	return &argumentError{err: err}
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

// segmentArgs are the per-call overrides shared by the panel tools.
// Unset fields keep the server's configured value.
type segmentArgs struct {
	Path            string   `json:"path"`
	Threshold       *int     `json:"threshold"`
	KernelSize      *int     `json:"kernel_size"`
	Iterations      *int     `json:"iterations"`
	MinArea         *int     `json:"min_area"`
	BufferRatio     *float64 `json:"buffer_ratio"`
	RowBucketHeight *int     `json:"row_bucket_height"`
	Renumber        *bool    `json:"renumber"`
}

func (a segmentArgs) apply(cfg *config.Config) {
	setIf(&cfg.Threshold, a.Threshold)
	setIf(&cfg.KernelSize, a.KernelSize)
	setIf(&cfg.DilationIterations, a.Iterations)
	setIf(&cfg.MinPanelArea, a.MinArea)
	setIf(&cfg.BufferRatio, a.BufferRatio)
	setIf(&cfg.RowBucketHeight, a.RowBucketHeight)
	setIf(&cfg.Renumber, a.Renumber)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// decodeArgs unmarshals args into v and checks that a path was given.
func decodeArgs(args json.RawMessage, v interface{}, path func() string) error {
	if err := json.Unmarshal(args, v); err != nil {
		return badArgs(err)
	}
	if path() == "" {
		return badArgs(errors.New("path is required"))
	}
	return nil
}

// configFor returns the server's settings with the call's overrides applied.
func (s *Server) configFor(a segmentArgs) (config.Config, error) {
	cfg := s.config
	a.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, badArgs(err)
	}
	return cfg, nil
}

// === Image Information ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageUnloadArgs struct {
	Path string `json:"path"`
}

// handleImageUnload drops a page from the cache so the next call re-reads it
// from disk. Without a path the whole cache is cleared.
func (s *Server) handleImageUnload(args json.RawMessage) (interface{}, error) {
	var a imageUnloadArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, badArgs(err)
		}
	}

	if a.Path == "" {
		s.cache.Clear()
		s.logger.Debug("cleared image cache")
	} else {
		s.cache.Evict(a.Path)
		s.logger.Debug("evicted image", "path", a.Path)
	}

	return map[string]interface{}{
		"unloaded": a.Path,
	}, nil
}

// === Panel Operations ===

// DetectedPanel is one region as reported by panels_detect.
type DetectedPanel struct {
	Index    int         `json:"index"`
	Position int         `json:"position"`
	File     string      `json:"file"`
	Detected segment.Box `json:"detected"`
	Box      segment.Box `json:"box"`
}

// DetectResult is the panels_detect response.
type DetectResult struct {
	Image    *imaging.ImageInfo `json:"image"`
	Detected int                `json:"detected"`
	Panels   []DetectedPanel    `json:"panels"`
}

func (s *Server) handlePanelsDetect(args json.RawMessage) (interface{}, error) {
	var a segmentArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	cfg, err := s.configFor(a)
	if err != nil {
		return nil, err
	}

	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	result, err := segment.Segment(img, cfg.SegmentOptions())
	if err != nil {
		return nil, err
	}

	detected := make([]DetectedPanel, 0, len(result.Regions))
	for i, r := range result.Regions {
		index := panels.Index(r, i, cfg.Renumber)
		detected = append(detected, DetectedPanel{
			Index:    index,
			Position: r.Position,
			File:     panels.Filename(info.BaseName, index, cfg.Ext),
			Detected: r.Detected,
			Box:      r.Box,
		})
	}

	return &DetectResult{
		Image:    info,
		Detected: result.Detected,
		Panels:   detected,
	}, nil
}

// ExtractResult is the panels_extract response. Error is set when some
// panels or optional outputs could not be written.
type ExtractResult struct {
	*extract.Summary
	Error string `json:"error,omitempty"`
}

type panelsExtractArgs struct {
	segmentArgs
	OutputDir string  `json:"output_dir"`
	Ext       *string `json:"ext"`
	Manifest  *bool   `json:"manifest"`
	Preview   *bool   `json:"preview"`
}

func (s *Server) handlePanelsExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a panelsExtractArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		return nil, badArgs(errors.New("output_dir is required"))
	}

	cfg := s.config
	setIf(&cfg.Ext, a.Ext)
	setIf(&cfg.Manifest, a.Manifest)
	setIf(&cfg.Preview, a.Preview)
	a.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, badArgs(err)
	}

	ex := &extract.Extractor{Config: cfg, Cache: s.cache, Logger: s.logger}
	summary, err := ex.Run(ctx, a.Path, a.OutputDir)
	if summary == nil {
		return nil, err
	}

	// Partial failures still report what was written; the failed panels
	// are listed in the summary.
	result := &ExtractResult{Summary: summary}
	if err != nil {
		s.logger.Warn("extraction incomplete", "path", a.Path, "failed", len(summary.Failed), "error", err)
		result.Error = err.Error()
	}
	return result, nil
}

func (s *Server) handlePanelsPreview(args json.RawMessage) (interface{}, error) {
	var a segmentArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	cfg, err := s.configFor(a)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	result, err := segment.Segment(img, cfg.SegmentOptions())
	if err != nil {
		return nil, err
	}

	return imaging.EncodePNGBase64(extract.Preview(img, result, cfg))
}
