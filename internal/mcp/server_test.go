package mcp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aditus-hr/pdffield/internal/config"
	"github.com/aditus-hr/pdffield/internal/pdf"
)

// minimalPDF builds a well-formed single-page letter document with
// computed cross-reference offsets.
func minimalPDF() []byte {
	var buf bytes.Buffer
	var offsets []int

	addObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	addObj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	addObj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n")

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)

	return buf.Bytes()
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, minimalPDF(), 0o644); err != nil {
		t.Fatalf("failed to write test PDF %s: %v", name, err)
	}
	return path
}

func testConfig() *config.Config {
	return &config.Config{
		Mode:        config.ModeStdio,
		FieldName:   config.DefaultFieldName,
		FieldX:      config.DefaultFieldX,
		FieldY:      config.DefaultFieldY,
		FieldWidth:  config.DefaultFieldWidth,
		FieldHeight: config.DefaultFieldHeight,
		FieldKind:   config.KindImage,
		Version:     "1.0.0",
		ServerName:  "test-server",
		LogLevel:    "info",
		MaxFileSize: 1024 * 1024,
	}
}

func newTestService() *pdf.Service {
	return pdf.NewService(1024*1024, true)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	service := newTestService()

	server, err := NewServer(testConfig(), service)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if server == nil {
		t.Fatal("server should not be nil")
	}
	if server.service != service {
		t.Error("server service not set correctly")
	}
	if server.mcpServer == nil {
		t.Error("mcpServer should be initialized")
	}

	if _, err := NewServer(testConfig(), nil); err == nil {
		t.Error("expected error for nil service")
	}
}

func TestServer_HandleStampFile(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := writePDF(t, tempDir, "contrato.pdf")
	outputPath := filepath.Join(tempDir, "contrato_con_imagen.pdf")

	server, err := NewServer(testConfig(), newTestService())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := callRequest(map[string]any{
		"input_path":  inputPath,
		"output_path": outputPath,
	})

	result, err := server.handleStampFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "firma_empleado") {
		t.Errorf("expected stamped field name in response, got: %s", resultText)
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Errorf("expected stamped output file: %v", err)
	}
}

func TestServer_HandleStampFile_PlacementOverride(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := writePDF(t, tempDir, "contrato.pdf")
	outputPath := filepath.Join(tempDir, "out.pdf")

	server, err := NewServer(testConfig(), newTestService())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	// Numeric tool arguments arrive as float64
	request := callRequest(map[string]any{
		"input_path":  inputPath,
		"output_path": outputPath,
		"field_name":  "visto_bueno",
		"x_pos":       float64(40),
		"y_pos":       float64(40),
		"width":       float64(120),
		"height":      float64(30),
		"kind":        "signature",
	})

	result, err := server.handleStampFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil || result.IsError {
		t.Fatalf("expected success, got: %s", extractTextFromResult(result))
	}

	fields, err := pdf.ListFieldsFile(outputPath)
	if err != nil {
		t.Fatalf("ListFieldsFile failed: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Name != "visto_bueno" {
		t.Errorf("field name = %q, want visto_bueno", fields[0].Name)
	}
	if fields[0].Type != "text" {
		t.Errorf("field type = %q, want text", fields[0].Type)
	}
	want := pdf.Rect{LLX: 40, LLY: 40, URX: 160, URY: 70}
	if fields[0].Rect != want {
		t.Errorf("field rect = %+v, want %+v", fields[0].Rect, want)
	}
}

func TestServer_HandleStampFile_MissingArguments(t *testing.T) {
	server, err := NewServer(testConfig(), newTestService())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	result, err := server.handleStampFile(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected an error result for missing arguments")
	}
}

func TestServer_HandleStampFile_InvalidDocument(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := filepath.Join(tempDir, "broken.pdf")
	if err := os.WriteFile(inputPath, []byte("%PDF-1.4 not really"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	server, err := NewServer(testConfig(), newTestService())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := callRequest(map[string]any{
		"input_path":  inputPath,
		"output_path": filepath.Join(tempDir, "out.pdf"),
	})

	result, err := server.handleStampFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected an error result for an invalid document")
	}
}

func TestServer_HandleStampDirectory(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writePDF(t, inputDir, "alta.pdf")
	writePDF(t, inputDir, "baja.pdf")

	server, err := NewServer(testConfig(), newTestService())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := callRequest(map[string]any{
		"input_directory":  inputDir,
		"output_directory": outputDir,
		"kind":             "signature",
	})

	result, err := server.handleStampDirectory(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "successful: 2") {
		t.Errorf("expected 2 successful files, got: %s", resultText)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "alta_con_firma.pdf")); err != nil {
		t.Errorf("expected stamped output file: %v", err)
	}
}

func TestServer_HandleListFields(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := writePDF(t, tempDir, "contrato.pdf")
	outputPath := filepath.Join(tempDir, "stamped.pdf")

	service := newTestService()
	server, err := NewServer(testConfig(), service)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	// An unstamped document has no form fields
	result, err := server.handleListFields(context.Background(), callRequest(map[string]any{
		"path": inputPath,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !strings.Contains(extractTextFromResult(result), "No form fields") {
		t.Errorf("expected empty field list, got: %s", extractTextFromResult(result))
	}

	// Stamp it and list again
	stamp, err := service.StampFile(pdf.StampFileRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Field:      pdf.DefaultFieldConfig(),
		Kind:       pdf.FieldKindImage,
	})
	if err != nil {
		t.Fatalf("StampFile failed: %v", err)
	}
	if !stamp.Success {
		t.Fatalf("StampFile did not succeed: %s", stamp.Message)
	}

	result, err = server.handleListFields(context.Background(), callRequest(map[string]any{
		"path": outputPath,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "firma_empleado") {
		t.Errorf("expected stamped field in list, got: %s", resultText)
	}
	if !strings.Contains(resultText, "button") {
		t.Errorf("expected button field type, got: %s", resultText)
	}
}

func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
