package pdf

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Stamper performs the single-document pass: read all pages, overlay the
// field onto page one, write the result. It holds no per-document state
// and is safe to reuse across documents.
type Stamper struct {
	initAcroForm bool
}

// NewStamper creates a stamper. initAcroForm controls whether a missing
// interactive-form registry is created when the first field is added.
func NewStamper(initAcroForm bool) *Stamper {
	return &Stamper{initAcroForm: initAcroForm}
}

// Stamp reads a PDF document from rs, overlays the configured field onto
// its first page and writes the modified document to w. Pages after the
// first pass through untouched; a zero-page document is written back
// unchanged.
func (s *Stamper) Stamp(rs io.ReadSeeker, w io.Writer, cfg FieldConfig, kind FieldKind) error {
	if cfg.Name == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("field width and height must be positive")
	}
	if !kind.Valid() {
		return fmt.Errorf("invalid field kind: %s", kind)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("failed to ensure page count: %w", err)
	}

	if err := addFieldToFirstPage(ctx, cfg, kind, s.initAcroForm); err != nil {
		return err
	}

	if err := api.WriteContext(ctx, w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	return nil
}

// StampFile stamps inputPath into outputPath. A failed write may leave a
// partial output file in place; callers owning temporary artifacts clean
// up by identifier.
func (s *Stamper) StampFile(inputPath, outputPath string, cfg FieldConfig, kind FieldKind) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := s.Stamp(in, out, cfg, kind); err != nil {
		out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// PageCount reports the number of pages of a PDF file
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx.PageCount, nil
}
