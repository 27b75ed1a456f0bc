package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sitedesk/accessform/internal/forms"
	"github.com/sitedesk/accessform/internal/gcp"
	"github.com/sitedesk/accessform/internal/models"
)

// User-facing messages. Precondition failures carry these verbatim;
// everything else passes its own message through, except permission errors
// which always collapse to msgPermissionDenied.
const (
	msgProjectNotFound  = "Project not found."
	msgProjectNoEstate  = "Project is not linked to an estate."
	msgEstateNotFound   = "Estate not found."
	msgEstateNoTemplate = "Estate has no access form template."
	msgEstateNoMappings = "Estate has no form field mappings."
	msgNoEmployees      = "No employees selected."
	msgNoEmployeesFound = "None of the selected employees were found."
	msgPermissionDenied = "You do not have permission to generate access forms."
)

const (
	generatedFormsPrefix = "generated-forms"
	combinedFormBasename = "combined-access-form"
	outputContentType    = "application/pdf"
)

// DocumentStore is the document database surface the pipeline needs.
// Point lookups return (nil, nil) for absent records.
type DocumentStore interface {
	Project(ctx context.Context, id string) (*models.Project, error)
	Estate(ctx context.Context, id string) (*models.Estate, error)
	CompanyInfo(ctx context.Context) (*models.CompanyInfo, error)
	EmployeesByID(ctx context.Context, ids []string) ([]*models.Employee, error)
	MarkRegistered(ctx context.Context, employeeIDs []string, estateID string) error
}

// BlobStore is the object storage surface the pipeline needs.
type BlobStore interface {
	GetBytes(ctx context.Context, object string) ([]byte, error)
	PutBytes(ctx context.Context, object string, data []byte, contentType string) error
	PublicURL(object string) string
}

// AccessFormFunction generates the combined estate access form for a
// project's workers: filled form sheets, supporting-document pages, one
// merged PDF uploaded to storage, and a registration write marking each
// processed worker as cleared for the estate.
type AccessFormFunction struct {
	store DocumentStore
	blob  BlobStore
	log   *slog.Logger
	now   func() time.Time
}

func NewAccessForm(store DocumentStore, blob BlobStore, log *slog.Logger) *AccessFormFunction {
	return &AccessFormFunction{
		store: store,
		blob:  blob,
		log:   log,
		now:   time.Now,
	}
}

// Process runs one generation. The caller always gets a structured
// response; hard failures surface as success=false with a message, while
// per-field and per-document skips ride along as diagnostics on success.
func (f *AccessFormFunction) Process(ctx context.Context, req *models.FillAccessFormRequest) *models.FillAccessFormResponse {
	logCtx := f.log.With("projectId", req.ProjectID, "requestedEmployees", len(req.EmployeeIDs))
	logCtx.Info("Starting access form generation.")

	resp, err := f.generate(ctx, logCtx, req)
	if err != nil {
		logCtx.Error("Access form generation failed.", "error", err)
		msg := err.Error()
		if gcp.IsPermissionDenied(err) {
			msg = msgPermissionDenied
		}
		return &models.FillAccessFormResponse{Success: false, Error: msg}
	}
	logCtx.Info("Access form generation complete.", "formUrl", resp.FormURL, "diagnostics", len(resp.Diagnostics))
	return resp
}

func (f *AccessFormFunction) generate(ctx context.Context, logCtx *slog.Logger, req *models.FillAccessFormRequest) (*models.FillAccessFormResponse, error) {
	if len(req.EmployeeIDs) == 0 {
		return nil, errors.New(msgNoEmployees)
	}

	project, estate, err := f.loadProjectAndEstate(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	company, err := f.store.CompanyInfo(ctx)
	if err != nil {
		return nil, err
	}
	if company == nil {
		logCtx.Warn("No company info configured; company fields will be blank.")
	}

	var diags []models.Diagnostic
	employees, err := f.store.EmployeesByID(ctx, req.EmployeeIDs)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(employees))
	for _, e := range employees {
		found[e.ID] = true
	}
	for _, id := range req.EmployeeIDs {
		if !found[id] {
			logCtx.Warn("Requested employee not found.", "employeeId", id)
			diags = append(diags, models.Diagnostic{Stage: "load", Subject: id, Detail: "employee not found"})
		}
	}
	if len(employees) == 0 {
		return nil, errors.New(msgNoEmployeesFound)
	}

	templateBytes, err := f.blob.GetBytes(ctx, gcp.ObjectPathFromURL(estate.FormTemplateURL))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch form template: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "access-form-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	templatePath := filepath.Join(tempDir, "template.pdf")
	if err := os.WriteFile(templatePath, templateBytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}

	filler := forms.NewPageFiller(logCtx)
	templateFields, err := filler.TemplateFieldNames(templatePath)
	if err != nil {
		return nil, err
	}

	runTime := f.now()
	chunks := forms.Paginate(employees, estate.PageSize())
	logCtx.Info("Filling form sheets.", "employees", len(employees), "sheets", len(chunks), "perSheet", estate.PageSize())

	var formPaths []string
	for i, chunk := range chunks {
		rc := forms.ResolveContext{Project: project, Company: company, Chunk: chunk, Now: runTime}
		path, fillDiags, err := filler.FillChunk(tempDir, templatePath, i, estate.FormFieldMappings, templateFields, rc)
		if err != nil {
			return nil, err
		}
		formPaths = append(formPaths, path)
		diags = append(diags, fillDiags...)
	}

	var bundlePages []string
	if len(estate.RequiredDocuments) > 0 {
		bundler := forms.NewBundler(f.blob, logCtx)
		var bundleDiags []models.Diagnostic
		bundlePages, bundleDiags = bundler.Bundle(ctx, tempDir, employees, estate.RequiredDocuments)
		diags = append(diags, bundleDiags...)
		logCtx.Info("Bundled supporting documents.", "pages", len(bundlePages), "skipped", len(bundleDiags))
	}

	outputPath := filepath.Join(tempDir, "combined.pdf")
	if err := forms.Assemble(outputPath, formPaths, bundlePages); err != nil {
		return nil, err
	}
	finalBytes, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read assembled document: %w", err)
	}

	object := fmt.Sprintf("%s/%s/%s_%s.pdf", generatedFormsPrefix, req.ProjectID, combinedFormBasename, runTime.Format("2006-01-02"))
	if err := f.blob.PutBytes(ctx, object, finalBytes, outputContentType); err != nil {
		return nil, fmt.Errorf("failed to upload access form: %w", err)
	}
	formURL := f.blob.PublicURL(object)

	// Registration happens only after the document is safely persisted, so
	// a worker is never marked registered without a stored form.
	processedIDs := make([]string, 0, len(employees))
	for _, e := range employees {
		processedIDs = append(processedIDs, e.ID)
	}
	if err := f.store.MarkRegistered(ctx, processedIDs, project.EstateID); err != nil {
		return nil, err
	}

	return &models.FillAccessFormResponse{
		Success:     true,
		FormURL:     formURL,
		Diagnostics: diags,
	}, nil
}

// loadProjectAndEstate enforces the generation preconditions in order and
// fails fast with the corresponding user-facing message.
func (f *AccessFormFunction) loadProjectAndEstate(ctx context.Context, projectID string) (*models.Project, *models.Estate, error) {
	project, err := f.store.Project(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, errors.New(msgProjectNotFound)
	}
	if project.EstateID == "" {
		return nil, nil, errors.New(msgProjectNoEstate)
	}
	estate, err := f.store.Estate(ctx, project.EstateID)
	if err != nil {
		return nil, nil, err
	}
	if estate == nil {
		return nil, nil, errors.New(msgEstateNotFound)
	}
	if estate.FormTemplateURL == "" {
		return nil, nil, errors.New(msgEstateNoTemplate)
	}
	if len(estate.FormFieldMappings) == 0 {
		return nil, nil, errors.New(msgEstateNoMappings)
	}
	return project, estate, nil
}
