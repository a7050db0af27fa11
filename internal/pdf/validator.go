package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Validator checks that a file is a stampable PDF before the per-document
// pass starts, so unreadable inputs are rejected with a message instead of
// a partially written output.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator with the given file size cap
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFile checks a candidate input file. Validation failures are
// reported inside the result, not as errors.
func (v *Validator) ValidateFile(path string) *ValidateFileResult {
	result := &ValidateFileResult{Path: path}

	if err := v.check(path); err != nil {
		result.Message = err.Error()
		return result
	}

	result.Valid = true
	return result
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(path string) bool {
	return v.check(path) == nil
}

func (v *Validator) check(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	if err := v.CheckFileInfo(path, fileInfo); err != nil {
		return err
	}

	// Opening the document catches files that merely carry the extension
	f, _, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return nil
}

// CheckFileInfo performs the cheap checks that don't require opening the
// file; the directory scan uses it to skip obvious non-candidates.
func (v *Validator) CheckFileInfo(path string, fileInfo os.FileInfo) error {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}
	return nil
}
