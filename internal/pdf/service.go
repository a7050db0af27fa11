package pdf

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Service orchestrates the stamping components: input validation,
// directory discovery and the per-document overlay pass. Per-document
// failures never escape as errors; they are folded into result values and
// aggregated into batch statistics (callers only see a Go error for
// request-level problems such as an unreadable directory).
type Service struct {
	maxFileSize int64
	validator   *Validator
	search      *Search
	stamper     *Stamper
}

// NewService creates a stamping service
func NewService(maxFileSize int64, initAcroForm bool) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
		search:      NewSearch(maxFileSize),
		stamper:     NewStamper(initAcroForm),
	}
}

// StampFile validates and stamps a single document. The result reports
// success or failure of that document; the error return is reserved for
// malformed requests.
func (s *Service) StampFile(req StampFileRequest) (*StampFileResult, error) {
	if req.InputPath == "" || req.OutputPath == "" {
		return nil, fmt.Errorf("input and output paths are required")
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("invalid field kind: %s", req.Kind)
	}

	result := &StampFileResult{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
	}

	if v := s.validator.ValidateFile(req.InputPath); !v.Valid {
		result.Message = v.Message
		return result, nil
	}

	if err := s.stamper.StampFile(req.InputPath, req.OutputPath, req.Field, req.Kind); err != nil {
		result.Message = err.Error()
		return result, nil
	}

	result.Success = true
	result.FieldName = req.Field.Name
	if pages, err := PageCount(req.OutputPath); err == nil {
		result.Pages = pages
	}
	return result, nil
}

// StampDirectory stamps every candidate PDF in a directory, sequentially.
// A failure on one document is logged and counted but does not stop the
// remainder of the batch.
func (s *Service) StampDirectory(req StampDirectoryRequest) (*StampDirectoryResult, error) {
	if req.InputDirectory == "" {
		return nil, fmt.Errorf("input directory is required")
	}
	outDir := req.OutputDirectory
	if outDir == "" {
		outDir = req.InputDirectory
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("cannot create output directory %s: %w", outDir, err)
	}

	files, err := s.search.FindPDFsInDirectory(req.InputDirectory)
	if err != nil {
		return nil, err
	}

	result := &StampDirectoryResult{
		InputDirectory:  req.InputDirectory,
		OutputDirectory: outDir,
	}

	for _, file := range files {
		outcome, err := s.StampFile(StampFileRequest{
			InputPath:  file.Path,
			OutputPath: filepath.Join(outDir, OutputName(file.Name, req.Kind)),
			Field:      req.Field,
			Kind:       req.Kind,
		})
		if err != nil {
			// Request-level problems count as failures for this file too
			outcome = &StampFileResult{InputPath: file.Path, Message: err.Error()}
		}

		result.Processed++
		if outcome.Success {
			result.Successful++
		} else {
			result.Failed++
			log.Printf("failed to stamp %s: %s", file.Path, outcome.Message)
		}
		result.Outcomes = append(result.Outcomes, *outcome)
	}

	return result, nil
}

// ListFields enumerates the interactive form fields of a document
func (s *Service) ListFields(req ListFieldsRequest) (*ListFieldsResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	fields, err := ListFieldsFile(req.Path)
	if err != nil {
		return nil, err
	}

	return &ListFieldsResult{Path: req.Path, Fields: fields}, nil
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// CountPDFsInDirectory counts the candidate PDF files in a directory
func (s *Service) CountPDFsInDirectory(directory string) (int, error) {
	return s.search.CountPDFsInDirectory(directory)
}

// OutputName derives the stamped filename from a source filename and the
// field kind: informe.pdf -> informe_con_imagen.pdf / informe_con_firma.pdf.
func OutputName(inputName string, kind FieldKind) string {
	stem := strings.TrimSuffix(inputName, filepath.Ext(inputName))
	return stem + kind.Suffix() + ".pdf"
}
