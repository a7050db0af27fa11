package pdf

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ListFieldsFile enumerates the interactive form fields of a PDF file
func ListFieldsFile(path string) ([]FieldInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()

	return ListFields(f)
}

// ListFields enumerates the interactive form fields of a PDF document,
// reporting name, type, rectangle and the page carrying the widget.
func ListFields(rs io.ReadSeeker) ([]FieldInfo, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return nil, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	widgetPages := annotationPageIndex(ctx)

	var fields []FieldInfo
	for i, fieldRef := range fieldsArray {
		field, err := processField(ctx, fieldRef, i, widgetPages)
		if err != nil {
			// Skip fields this reader cannot make sense of
			continue
		}
		if field != nil {
			fields = append(fields, *field)
		}
	}

	return fields, nil
}

// annotationPageIndex maps annotation object numbers to 1-based page numbers
func annotationPageIndex(ctx *model.Context) map[int]int {
	pages := map[int]int{}
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageDict, _, _, err := ctx.PageDict(pageNr, false)
		if err != nil {
			continue
		}
		obj, found := pageDict.Find("Annots")
		if !found {
			continue
		}
		annots, err := ctx.DereferenceArray(obj)
		if err != nil {
			continue
		}
		for _, a := range annots {
			if ref, ok := a.(types.IndirectRef); ok {
				pages[int(ref.ObjectNumber)] = pageNr
			}
		}
	}
	return pages
}

// processField extracts one field's description from its dictionary
func processField(ctx *model.Context, fieldObj types.Object, index int, widgetPages map[int]int) (*FieldInfo, error) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil, nil
	}

	field := &FieldInfo{}

	if nameObj, found := fieldDict.Find("T"); found {
		if name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
			field.Name = name
		}
	}
	if field.Name == "" {
		field.Name = fmt.Sprintf("field_%d", index)
	}

	if tuObj, found := fieldDict.Find("TU"); found {
		if tu, err := ctx.DereferenceStringOrHexLiteral(tuObj, model.V10, nil); err == nil {
			field.Tooltip = tu
		}
	}

	field.Type = fieldTypeName(ctx, fieldDict)

	if rectObj, found := fieldDict.Find("Rect"); found {
		if rectArr, err := ctx.DereferenceArray(rectObj); err == nil && len(rectArr) == 4 {
			field.Rect = Rect{
				LLX: numberValue(ctx, rectArr[0]),
				LLY: numberValue(ctx, rectArr[1]),
				URX: numberValue(ctx, rectArr[2]),
				URY: numberValue(ctx, rectArr[3]),
			}
		}
	}

	if ref, ok := fieldObj.(types.IndirectRef); ok {
		field.Page = widgetPages[int(ref.ObjectNumber)]
	}

	return field, nil
}

// fieldTypeName resolves the FT entry (inherited from the parent when
// absent) into a reader-friendly type name.
func fieldTypeName(ctx *model.Context, fieldDict types.Dict) string {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return fieldTypeName(ctx, parentDict)
			}
		}
		return "unknown"
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return "unknown"
	}

	switch ftName {
	case "Btn":
		if flagsObj, found := fieldDict.Find("Ff"); found {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				if (*flags & (1 << 15)) != 0 {
					return "radio"
				}
				if (*flags & (1 << 16)) != 0 {
					return "button"
				}
			}
		}
		return "checkbox"
	case "Tx":
		return "text"
	case "Ch":
		return "choice"
	case "Sig":
		return "signature"
	default:
		return "unknown"
	}
}

// numberValue dereferences a numeric object into a float64
func numberValue(ctx *model.Context, obj types.Object) float64 {
	o, err := ctx.Dereference(obj)
	if err != nil {
		return 0
	}
	switch v := o.(type) {
	case types.Integer:
		return float64(v)
	case types.Float:
		return float64(v)
	default:
		return 0
	}
}
