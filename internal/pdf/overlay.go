package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Default appearance for stamped fields: Helvetica, auto-sized, black
const fieldDefaultAppearance = "/Helv 0 Tf 0 g"

// Caption drawn inside image fields
const (
	captionText     = "Imagen"
	captionFontSize = 8
)

// fallback page size when a page carries no MediaBox (US Letter)
const (
	fallbackPageWidth  = 612
	fallbackPageHeight = 792
)

// addFieldToFirstPage stamps one widget annotation onto page 1 of an open
// document context and registers it in the interactive-form registry. For
// the image kind it also paints the caption above the existing page
// content. Documents without pages are left untouched.
func addFieldToFirstPage(ctx *model.Context, cfg FieldConfig, kind FieldKind, initAcroForm bool) error {
	if ctx.PageCount == 0 {
		return nil
	}

	pageDict, pageRef, inhPAttrs, err := ctx.PageDict(1, false)
	if err != nil {
		return fmt.Errorf("failed to get page dictionary: %w", err)
	}

	pageWidth, pageHeight := pageDimensions(inhPAttrs)
	rect := ResolveRect(cfg, pageWidth, pageHeight)

	fontRef, err := ensureCaptionFont(ctx, pageDict, inhPAttrs)
	if err != nil {
		return fmt.Errorf("failed to set up field font: %w", err)
	}

	widgetRef, err := newWidgetAnnotation(ctx, cfg, kind, rect, pageRef)
	if err != nil {
		return fmt.Errorf("failed to build field annotation: %w", err)
	}

	if err := appendPageAnnotation(ctx, pageDict, widgetRef); err != nil {
		return fmt.Errorf("failed to attach annotation to page: %w", err)
	}

	if err := registerFormField(ctx, widgetRef, fontRef, initAcroForm); err != nil {
		return fmt.Errorf("failed to register form field: %w", err)
	}

	if kind == FieldKindImage {
		if err := appendCaption(ctx, pageDict, rect); err != nil {
			return fmt.Errorf("failed to draw field caption: %w", err)
		}
	}

	return nil
}

// pageDimensions reads the page size from the (possibly inherited) MediaBox
func pageDimensions(inhPAttrs *model.InheritedPageAttrs) (float64, float64) {
	if inhPAttrs == nil || inhPAttrs.MediaBox == nil {
		return fallbackPageWidth, fallbackPageHeight
	}
	return inhPAttrs.MediaBox.Width(), inhPAttrs.MediaBox.Height()
}

// newWidgetAnnotation creates the widget annotation dictionary for the
// field and returns an indirect reference to it. Both kinds share the
// visual style of the original tool: 1pt inset border, white fill, black
// border, printable.
func newWidgetAnnotation(ctx *model.Context, cfg FieldConfig, kind FieldKind,
	rect Rect, pageRef *types.IndirectRef,
) (*types.IndirectRef, error) {
	fieldType := "Tx"
	tooltip := fmt.Sprintf("Campo de firma: %s", cfg.Name)
	var fieldFlags types.Integer

	if kind == FieldKindImage {
		fieldType = "Btn"
		tooltip = fmt.Sprintf("Campo de imagen: %s", cfg.Name)
		fieldFlags = types.Integer(1 << 16) // pushbutton
	}

	d := types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Widget"),
		"FT":      types.Name(fieldType),
		"Rect":    types.NewNumberArray(rect.LLX, rect.LLY, rect.URX, rect.URY),
		"T":       types.StringLiteral(cfg.Name),
		"TU":      types.StringLiteral(tooltip),
		"F":       types.Integer(4), // print flag
		"DA":      types.StringLiteral(fieldDefaultAppearance),
		"MK": types.Dict{
			"BG": types.NewNumberArray(1, 1, 1),
			"BC": types.NewNumberArray(0, 0, 0),
		},
		"BS": types.Dict{
			"W": types.Integer(1),
			"S": types.Name("I"), // inset
		},
	}
	if fieldFlags != 0 {
		d["Ff"] = fieldFlags
	}
	if pageRef != nil {
		d["P"] = *pageRef
	}

	return ctx.IndRefForNewObject(d)
}

// appendPageAnnotation adds the widget reference to the page's Annots
// array, creating the array when the page has none.
func appendPageAnnotation(ctx *model.Context, pageDict types.Dict, widgetRef *types.IndirectRef) error {
	obj, found := pageDict.Find("Annots")
	if !found {
		pageDict.Insert("Annots", types.Array{*widgetRef})
		return nil
	}

	annots, err := ctx.DereferenceArray(obj)
	if err != nil {
		return fmt.Errorf("failed to dereference Annots array: %w", err)
	}

	pageDict.Update("Annots", append(annots, *widgetRef))
	return nil
}

// registerFormField appends the field to the catalog's AcroForm Fields
// array. A missing registry is only created when initAcroForm is set; in
// that case it carries the default appearance settings the field relies on.
func registerFormField(ctx *model.Context, fieldRef, fontRef *types.IndirectRef, initAcroForm bool) error {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		if !initAcroForm {
			// The widget annotation alone is still emitted; viewers
			// without a registry simply won't offer the field.
			return nil
		}
		acroForm := types.Dict{
			"Fields":          types.Array{*fieldRef},
			"DA":              types.StringLiteral(fieldDefaultAppearance),
			"DR":              types.Dict{"Font": types.Dict{"Helv": *fontRef}},
			"NeedAppearances": types.Boolean(true),
		}
		acroFormRef, err := ctx.IndRefForNewObject(acroForm)
		if err != nil {
			return err
		}
		rootDict.Insert("AcroForm", *acroFormRef)
		return nil
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return fmt.Errorf("AcroForm entry is not a dictionary")
	}

	var fields types.Array
	if fieldsObj, found := acroFormDict.Find("Fields"); found {
		if fields, err = ctx.DereferenceArray(fieldsObj); err != nil {
			return fmt.Errorf("failed to dereference Fields array: %w", err)
		}
	}

	acroFormDict.Update("Fields", append(fields, *fieldRef))
	// The stamped field has no appearance stream of its own
	acroFormDict.Update("NeedAppearances", types.Boolean(true))
	return nil
}

// ensureCaptionFont makes Helvetica available as /Helv in the page's
// resources and returns an indirect reference reusable in the registry's
// /DR. Inherited resources are copied down to the page before being
// extended so sibling pages keep their view.
func ensureCaptionFont(ctx *model.Context, pageDict types.Dict, inhPAttrs *model.InheritedPageAttrs) (*types.IndirectRef, error) {
	fontDict := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	fontRef, err := ctx.IndRefForNewObject(fontDict)
	if err != nil {
		return nil, err
	}

	var resDict types.Dict
	if obj, found := pageDict.Find("Resources"); found {
		if resDict, err = ctx.DereferenceDict(obj); err != nil {
			return nil, fmt.Errorf("failed to dereference Resources: %w", err)
		}
	}
	if resDict == nil {
		resDict = types.Dict{}
		if inhPAttrs != nil && inhPAttrs.Resources != nil {
			for k, v := range inhPAttrs.Resources {
				resDict[k] = v
			}
		}
		pageDict.Update("Resources", resDict)
	}

	var fonts types.Dict
	if obj, found := resDict.Find("Font"); found {
		if fonts, err = ctx.DereferenceDict(obj); err != nil {
			return nil, fmt.Errorf("failed to dereference Font resources: %w", err)
		}
	}
	if fonts == nil {
		fonts = types.Dict{}
		resDict.Update("Font", fonts)
	}

	if _, found := fonts.Find("Helv"); !found {
		fonts.Insert("Helv", *fontRef)
	}

	return fontRef, nil
}

// appendCaption paints the image-field caption on top of the existing page
// content: 8pt Helvetica, black, left-aligned and vertically centered
// within the field rectangle.
func appendCaption(ctx *model.Context, pageDict types.Dict, rect Rect) error {
	textX := rect.LLX + 5
	textY := rect.LLY + rect.Height()/2 - 4

	ops := fmt.Sprintf("q BT /Helv %d Tf 0 0 0 rg %.2f %.2f Td (%s) Tj ET Q",
		captionFontSize, textX, textY, captionText)

	return appendPageContent(ctx, pageDict, []byte(ops))
}

// appendPageContent adds a content stream painted after (and therefore
// above) the page's existing content. The original content is bracketed
// with save/restore guard streams so an unbalanced graphics state cannot
// displace the appended operators.
func appendPageContent(ctx *model.Context, pageDict types.Dict, ops []byte) error {
	obj, found := pageDict.Find("Contents")
	if !found {
		ref, err := newContentStream(ctx, ops)
		if err != nil {
			return err
		}
		pageDict.Insert("Contents", *ref)
		return nil
	}

	saveRef, err := newContentStream(ctx, []byte("q\n"))
	if err != nil {
		return err
	}
	opsRef, err := newContentStream(ctx, append([]byte("Q\n"), ops...))
	if err != nil {
		return err
	}

	switch o := obj.(type) {
	case types.Array:
		pageDict.Update("Contents", append(append(types.Array{*saveRef}, o...), *opsRef))
	case types.IndirectRef:
		entry, err := ctx.Dereference(o)
		if err != nil {
			return fmt.Errorf("failed to dereference Contents: %w", err)
		}
		if arr, ok := entry.(types.Array); ok {
			pageDict.Update("Contents", append(append(types.Array{*saveRef}, arr...), *opsRef))
			return nil
		}
		pageDict.Update("Contents", types.Array{*saveRef, o, *opsRef})
	default:
		return fmt.Errorf("unsupported Contents type: %T", obj)
	}

	return nil
}

// newContentStream wraps raw content operators into an encoded stream
// object and returns its indirect reference.
func newContentStream(ctx *model.Context, ops []byte) (*types.IndirectRef, error) {
	sd, err := ctx.NewStreamDictForBuf(ops)
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, fmt.Errorf("failed to encode content stream: %w", err)
	}
	return ctx.IndRefForNewObject(*sd)
}
