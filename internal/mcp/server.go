// Package mcp exposes the stamping service as Model Context Protocol
// tools over standard I/O.
package mcp

import (
	"context"
	"fmt"
	"log"

	"github.com/aditus-hr/pdffield/internal/config"
	"github.com/aditus-hr/pdffield/internal/pdf"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *pdf.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server around the stamping service
func NewServer(cfg *config.Config, service *pdf.Service) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	stampFileTool := mcp.NewTool(
		"stamp_pdf_file",
		mcp.WithDescription("Stamp an interactive form field onto the first page of a PDF file"),
		mcp.WithString("input_path",
			mcp.Required(),
			mcp.Description("Full path to the source PDF file"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Full path for the stamped PDF file"),
		),
		mcp.WithString("field_name",
			mcp.Description("Form field name (defaults to the configured name)"),
		),
		mcp.WithNumber("x_pos",
			mcp.Description("Field x offset in points (negative = from the right edge)"),
		),
		mcp.WithNumber("y_pos",
			mcp.Description("Field y offset in points (negative = from the top edge)"),
		),
		mcp.WithNumber("width",
			mcp.Description("Field width in points"),
		),
		mcp.WithNumber("height",
			mcp.Description("Field height in points"),
		),
		mcp.WithString("kind",
			mcp.Description("Field kind: 'image' (pushbutton) or 'signature' (text field)"),
		),
	)
	s.mcpServer.AddTool(stampFileTool, s.handleStampFile)

	stampDirectoryTool := mcp.NewTool(
		"stamp_pdf_directory",
		mcp.WithDescription("Stamp an interactive form field onto every PDF in a directory"),
		mcp.WithString("input_directory",
			mcp.Required(),
			mcp.Description("Directory containing source PDF files"),
		),
		mcp.WithString("output_directory",
			mcp.Description("Directory for stamped files (defaults to the input directory)"),
		),
		mcp.WithString("field_name",
			mcp.Description("Form field name (defaults to the configured name)"),
		),
		mcp.WithNumber("x_pos",
			mcp.Description("Field x offset in points (negative = from the right edge)"),
		),
		mcp.WithNumber("y_pos",
			mcp.Description("Field y offset in points (negative = from the top edge)"),
		),
		mcp.WithNumber("width",
			mcp.Description("Field width in points"),
		),
		mcp.WithNumber("height",
			mcp.Description("Field height in points"),
		),
		mcp.WithString("kind",
			mcp.Description("Field kind: 'image' (pushbutton) or 'signature' (text field)"),
		),
	)
	s.mcpServer.AddTool(stampDirectoryTool, s.handleStampDirectory)

	listFieldsTool := mcp.NewTool(
		"pdf_list_fields",
		mcp.WithDescription("List the interactive form fields of a PDF file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(listFieldsTool, s.handleListFields)
}

// Handler functions

func (s *Server) handleStampFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inputPath, err := request.RequireString("input_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := request.RequireString("output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.StampFileRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Field:      s.fieldConfig(request),
		Kind:       s.fieldKind(request),
	}

	result, err := s.service.StampFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !result.Success {
		return mcp.NewToolResultError(
			fmt.Sprintf("failed to stamp %s: %s", result.InputPath, result.Message)), nil
	}

	responseText := fmt.Sprintf("Stamped field %q onto: %s\n", result.FieldName, result.InputPath)
	responseText += fmt.Sprintf("Output: %s\n", result.OutputPath)
	responseText += fmt.Sprintf("Pages: %d\n", result.Pages)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleStampDirectory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inputDirectory, err := request.RequireString("input_directory")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	outputDirectory := ""
	if dir, ok := args["output_directory"].(string); ok {
		outputDirectory = dir
	}

	req := pdf.StampDirectoryRequest{
		InputDirectory:  inputDirectory,
		OutputDirectory: outputDirectory,
		Field:           s.fieldConfig(request),
		Kind:            s.fieldKind(request),
	}

	result, err := s.service.StampDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatStampDirectoryResult(result)), nil
}

func (s *Server) handleListFields(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.ListFields(pdf.ListFieldsRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(result.Fields) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No form fields found in %s", result.Path)), nil
	}

	responseText := fmt.Sprintf("Found %d form field(s) in %s\n\n", len(result.Fields), result.Path)
	for i, field := range result.Fields {
		responseText += fmt.Sprintf("%d. %s (%s)\n", i+1, field.Name, field.Type)
		responseText += fmt.Sprintf("   Page: %d\n", field.Page)
		responseText += fmt.Sprintf("   Rect: (%.0f, %.0f, %.0f, %.0f)\n",
			field.Rect.LLX, field.Rect.LLY, field.Rect.URX, field.Rect.URY)
		if field.Tooltip != "" {
			responseText += fmt.Sprintf("   Tooltip: %s\n", field.Tooltip)
		}
	}

	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods

func (s *Server) formatStampDirectoryResult(result *pdf.StampDirectoryResult) string {
	text := fmt.Sprintf("Stamped directory: %s\n", result.InputDirectory)
	text += fmt.Sprintf("Output directory: %s\n", result.OutputDirectory)
	text += fmt.Sprintf("Processed: %d, successful: %d, failed: %d\n",
		result.Processed, result.Successful, result.Failed)

	if result.Failed > 0 {
		text += "\nFailures:\n"
		for _, outcome := range result.Outcomes {
			if !outcome.Success {
				text += fmt.Sprintf("  %s: %s\n", outcome.InputPath, outcome.Message)
			}
		}
	}

	return text
}

// Parameter helpers

func (s *Server) fieldConfig(request mcp.CallToolRequest) pdf.FieldConfig {
	cfg := pdf.FieldConfig{
		Name:    s.config.FieldName,
		XOffset: s.config.FieldX,
		YOffset: s.config.FieldY,
		Width:   s.config.FieldWidth,
		Height:  s.config.FieldHeight,
	}

	args := request.GetArguments()
	if name, ok := args["field_name"].(string); ok && name != "" {
		cfg.Name = name
	}
	cfg.XOffset = intArg(args, "x_pos", cfg.XOffset)
	cfg.YOffset = intArg(args, "y_pos", cfg.YOffset)
	cfg.Width = intArg(args, "width", cfg.Width)
	cfg.Height = intArg(args, "height", cfg.Height)

	return cfg
}

// intArg reads a numeric tool argument, falling back when absent. JSON
// numbers arrive as float64.
func intArg(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func (s *Server) fieldKind(request mcp.CallToolRequest) pdf.FieldKind {
	args := request.GetArguments()
	if v, ok := args["kind"].(string); ok {
		if k := pdf.FieldKind(v); k.Valid() {
			return k
		}
	}
	return pdf.FieldKind(s.config.FieldKind)
}

// Run starts the MCP server over standard I/O
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting pdffield MCP server in stdio mode")
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
