package forms

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/sitedesk/accessform/internal/models"
)

// PageFiller renders one form sheet per worker chunk by filling a pristine
// copy of the estate's template and locking the result so the filled values
// survive merging and cannot be edited.
type PageFiller struct {
	conf *model.Configuration
	log  *slog.Logger
}

func NewPageFiller(log *slog.Logger) *PageFiller {
	return &PageFiller{conf: pdfConf(), log: log}
}

// Fill data in pdfcpu's form JSON shape.
type fillTextField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type fillForm struct {
	TextFields []fillTextField `json:"textfield,omitempty"`
}

type fillFormGroup struct {
	Forms []fillForm `json:"forms"`
}

// TemplateFieldNames lists the names of the form fields present in the
// template so unmapped field names can be reported before filling. A
// template without an AcroForm yields an empty set, not an error.
func (pf *PageFiller) TemplateFieldNames(templatePath string) (map[string]bool, error) {
	f, err := os.Open(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	ctx, err := api.ReadContext(f, pf.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	names := map[string]bool{}
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return names, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return names, nil
	}
	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return names, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return names, nil
	}
	collectFieldNames(ctx, fieldsArray, "", names)
	return names, nil
}

// collectFieldNames records every field's fully qualified name. Designer
// exports often hang terminal fields off parent nodes, so names are joined
// down the /Kids tree with dots; kids without their own partial name are
// widgets of the field already recorded.
func collectFieldNames(ctx *model.Context, fields types.Array, prefix string, names map[string]bool) {
	for _, fieldRef := range fields {
		fieldDict, err := ctx.DereferenceDict(fieldRef)
		if err != nil || fieldDict == nil {
			continue
		}
		name := prefix
		if nameObj, found := fieldDict.Find("T"); found {
			if partial, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil && partial != "" {
				if name == "" {
					name = partial
				} else {
					name = name + "." + partial
				}
			}
		}
		if kidsObj, found := fieldDict.Find("Kids"); found {
			if kids, err := ctx.DereferenceArray(kidsObj); err == nil && len(kids) > 0 {
				collectFieldNames(ctx, kids, name, names)
			}
		}
		if name != "" {
			names[name] = true
		}
	}
}

// FillChunk produces the rendered sheet(s) for one worker chunk. It always
// starts from the pristine template at templatePath, resolves every mapping
// entry against the chunk, sets the non-empty values and locks the form.
// A mapping whose PDF field is missing from the template is skipped with a
// diagnostic, and a fill the engine rejects degrades to an unfilled sheet;
// the sheet is always emitted and only file-system failures are errors.
// It returns the path of the rendered PDF inside dir.
func (pf *PageFiller) FillChunk(dir, templatePath string, chunkIndex int, mappings map[string]string, templateFields map[string]bool, rc ResolveContext) (string, []models.Diagnostic, error) {
	var diags []models.Diagnostic

	logicalKeys := make([]string, 0, len(mappings))
	for k := range mappings {
		logicalKeys = append(logicalKeys, k)
	}
	sort.Strings(logicalKeys)

	var textFields []fillTextField
	for _, logicalKey := range logicalKeys {
		pdfField := mappings[logicalKey]
		value := Resolve(logicalKey, rc)
		if value == "" {
			continue
		}
		// A template with no fillable form at all has an empty field set,
		// which skips every mapping here rather than failing the sheet.
		if !templateFields[pdfField] {
			pf.log.Warn("Mapped field missing from template, skipping.", "logicalKey", logicalKey, "pdfField", pdfField)
			diags = append(diags, models.Diagnostic{
				Stage:   "fill",
				Subject: pdfField,
				Detail:  fmt.Sprintf("template has no field %q mapped from %q", pdfField, logicalKey),
			})
			continue
		}
		textFields = append(textFields, fillTextField{Name: pdfField, Value: value, Locked: true})
	}

	outPath := filepath.Join(dir, fmt.Sprintf("form_chunk_%03d.pdf", chunkIndex))

	// A chunk can resolve to no values at all, e.g. a short final chunk
	// against a mapping that only addresses higher worker slots. The sheet
	// is still emitted, just unfilled.
	if len(textFields) == 0 {
		if err := copyFile(templatePath, outPath); err != nil {
			return "", diags, err
		}
		return outPath, diags, pf.lockFields(outPath)
	}

	dataPath := filepath.Join(dir, fmt.Sprintf("form_chunk_%03d.json", chunkIndex))
	group := fillFormGroup{Forms: []fillForm{{TextFields: textFields}}}
	data, err := json.Marshal(group)
	if err != nil {
		return "", diags, fmt.Errorf("failed to marshal fill data: %w", err)
	}
	if err := os.WriteFile(dataPath, data, 0o644); err != nil {
		return "", diags, fmt.Errorf("failed to write fill data: %w", err)
	}

	if err := api.FillFormFile(templatePath, dataPath, outPath, pf.conf); err != nil {
		// A fill the engine rejects, e.g. a mapping that targets a checkbox
		// widget, still emits the sheet unfilled.
		pf.log.Warn("Could not fill form sheet, emitting it unfilled.", "chunk", chunkIndex, "error", err)
		diags = append(diags, models.Diagnostic{
			Stage:   "fill",
			Subject: fmt.Sprintf("chunk %d", chunkIndex),
			Detail:  err.Error(),
		})
		if err := copyFile(templatePath, outPath); err != nil {
			return "", diags, err
		}
		return outPath, diags, pf.lockFields(outPath)
	}
	return outPath, diags, nil
}

// lockFields makes every form field read-only so an untouched template copy
// is as merge-safe as a filled one.
func (pf *PageFiller) lockFields(path string) error {
	lockedPath := path + ".locked"
	if err := api.LockFormFieldsFile(path, lockedPath, nil, pf.conf); err != nil {
		// Templates without an AcroForm have nothing to lock.
		pf.log.Warn("Could not lock form fields.", "path", path, "error", err)
		return nil
	}
	return os.Rename(lockedPath, path)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
