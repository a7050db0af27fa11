package pdf

// FieldKind selects the form-field subtype stamped onto a page
type FieldKind string

const (
	// FieldKindImage is a pushbutton field meant to receive an image in
	// the host viewer. The field itself is empty; only a caption is drawn.
	FieldKindImage FieldKind = "image"
	// FieldKindSignature is a plain fillable text field standing in for a
	// handwritten signature.
	FieldKindSignature FieldKind = "signature"
)

// Output filename suffixes per field kind
const (
	SuffixImage     = "_con_imagen"
	SuffixSignature = "_con_firma"
)

// Suffix returns the output filename suffix for the kind
func (k FieldKind) Suffix() string {
	if k == FieldKindSignature {
		return SuffixSignature
	}
	return SuffixImage
}

// Valid reports whether the kind is one of the supported values
func (k FieldKind) Valid() bool {
	return k == FieldKindImage || k == FieldKindSignature
}

// FieldConfig describes the form field to stamp onto the first page of a
// document. XOffset and YOffset may be negative, meaning the position is
// measured leftward from the right edge / downward from the top edge.
type FieldConfig struct {
	Name    string `json:"field_name"`
	XOffset int    `json:"x_pos"`
	YOffset int    `json:"y_pos"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// DefaultFieldConfig returns the stock employee-signature placement
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		Name:    "firma_empleado",
		XOffset: -27,
		YOffset: 16,
		Width:   90,
		Height:  23,
	}
}

// Rect is an absolute rectangle in page coordinate space (origin bottom-left)
type Rect struct {
	LLX float64 `json:"llx"`
	LLY float64 `json:"lly"`
	URX float64 `json:"urx"`
	URY float64 `json:"ury"`
}

// Width returns the horizontal extent of the rectangle
func (r Rect) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent of the rectangle
func (r Rect) Height() float64 { return r.URY - r.LLY }

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// FieldInfo describes one interactive form field found in a document
type FieldInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"` // "button", "text", "checkbox", "radio", "choice", "signature", "unknown"
	Page    int    `json:"page"`
	Rect    Rect   `json:"rect"`
	Tooltip string `json:"tooltip,omitempty"`
}

// Request Types

// StampFileRequest asks for one document to be stamped
type StampFileRequest struct {
	InputPath  string      `json:"input_path"`
	OutputPath string      `json:"output_path"`
	Field      FieldConfig `json:"field"`
	Kind       FieldKind   `json:"kind"`
}

// StampDirectoryRequest asks for every PDF in a directory to be stamped
type StampDirectoryRequest struct {
	InputDirectory  string      `json:"input_directory"`
	OutputDirectory string      `json:"output_directory"`
	Field           FieldConfig `json:"field"`
	Kind            FieldKind   `json:"kind"`
}

// ListFieldsRequest asks for the form fields of a document
type ListFieldsRequest struct {
	Path string `json:"path"`
}

// Response Types

// StampFileResult reports the outcome of stamping one document. Per-document
// failures are carried here as Success=false with a message, not as errors.
type StampFileResult struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Pages      int    `json:"pages"`
	FieldName  string `json:"field_name,omitempty"`
}

// StampDirectoryResult aggregates per-file outcomes of a batch run
type StampDirectoryResult struct {
	InputDirectory  string            `json:"input_directory"`
	OutputDirectory string            `json:"output_directory"`
	Processed       int               `json:"processed_files"`
	Successful      int               `json:"successful"`
	Failed          int               `json:"failed"`
	Outcomes        []StampFileResult `json:"outcomes"`
}

// ListFieldsResult enumerates the form fields of a document
type ListFieldsResult struct {
	Path   string      `json:"path"`
	Fields []FieldInfo `json:"fields"`
}

// ValidateFileResult reports whether a file is a stampable PDF
type ValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}
