package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildTestPDF constructs a minimal but well-formed PDF with one empty
// page per entry in pageSizes (width, height in points). Offsets in the
// cross-reference table are computed, so strict readers accept the result.
func buildTestPDF(pageSizes [][2]float64) []byte {
	var buf bytes.Buffer
	var offsets []int

	addObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	var kids []string
	for i := range pageSizes {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
	}

	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	addObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), len(pageSizes)))
	for i, size := range pageSizes {
		addObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << >> >>\nendobj\n",
			3+i, size[0], size[1]))
	}

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

// writeTestPDF writes a generated document into dir and returns its path
func writeTestPDF(t *testing.T, dir, name string, pageSizes [][2]float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buildTestPDF(pageSizes), 0o644); err != nil {
		t.Fatalf("failed to write test PDF %s: %v", name, err)
	}
	return path
}

// writeCorruptPDF writes a file that merely claims to be a PDF
func writeCorruptPDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\nthis is not a real document"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt PDF %s: %v", name, err)
	}
	return path
}

// letterPage is the page size used by the stock placement scenarios
var letterPage = [2]float64{612, 792}

// testMaxFileSize is a generous size limit for fixture documents
const testMaxFileSize = int64(10 * 1024 * 1024)
