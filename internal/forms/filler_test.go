package forms

import (
	"log/slog"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitedesk/accessform/internal/models"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestTemplateFieldNames(t *testing.T) {
	dir := t.TempDir()
	path := writeTempPDF(t, dir, "template.pdf", formTemplatePDF("Name1", "Name2", "Date"))

	filler := NewPageFiller(testLogger())
	names, err := filler.TemplateFieldNames(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Name1": true, "Name2": true, "Date": true}, names)
}

func TestTemplateFieldNamesNoAcroForm(t *testing.T) {
	dir := t.TempDir()
	path := writeTempPDF(t, dir, "blank.pdf", blankPagePDF())

	filler := NewPageFiller(testLogger())
	names, err := filler.TemplateFieldNames(path)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestTemplateFieldNamesHierarchical(t *testing.T) {
	dir := t.TempDir()
	path := writeTempPDF(t, dir, "template.pdf", hierarchicalTemplatePDF())

	filler := NewPageFiller(testLogger())
	names, err := filler.TemplateFieldNames(path)
	require.NoError(t, err)
	assert.True(t, names["Worker.Name"], "terminal field under a parent node")
	assert.True(t, names["Worker.Phone"], "terminal field under a parent node")
}

func TestFillChunk(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeTempPDF(t, dir, "template.pdf", formTemplatePDF("Name1", "Name2"))

	filler := NewPageFiller(testLogger())
	fields, err := filler.TemplateFieldNames(templatePath)
	require.NoError(t, err)

	mappings := map[string]string{
		"employeeFullName_1": "Name1",
		"employeeFullName_2": "Name2",
	}
	chunk := []*models.Employee{{FirstName: "Jane", LastName: "Doe"}}
	rc := fullContext(chunk)

	outPath, diags, err := filler.FillChunk(dir, templatePath, 0, mappings, fields, rc)
	require.NoError(t, err)
	// Name2 resolves empty for a one-worker chunk; an unset value is not a
	// diagnostic.
	assert.Empty(t, diags)

	count, err := api.PageCountFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFillChunkSkipsMissingTemplateField(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeTempPDF(t, dir, "template.pdf", formTemplatePDF("Name1"))

	filler := NewPageFiller(testLogger())
	fields, err := filler.TemplateFieldNames(templatePath)
	require.NoError(t, err)

	mappings := map[string]string{
		"employeeFullName_1": "Name1",
		"employeePhone_1":    "NoSuchField",
	}
	rc := fullContext([]*models.Employee{richWorker()})

	outPath, diags, err := filler.FillChunk(dir, templatePath, 0, mappings, fields, rc)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "fill", diags[0].Stage)
	assert.Equal(t, "NoSuchField", diags[0].Subject)

	_, err = api.PageCountFile(outPath)
	assert.NoError(t, err)
}

// A template without any fillable form still yields a sheet; every mapping
// that resolved to a value is skipped with a diagnostic instead of failing
// the run.
func TestFillChunkFormlessTemplate(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeTempPDF(t, dir, "blank.pdf", blankPagePDF())

	filler := NewPageFiller(testLogger())
	fields, err := filler.TemplateFieldNames(templatePath)
	require.NoError(t, err)
	require.Empty(t, fields)

	mappings := map[string]string{"employeeFullName_1": "Name1"}
	rc := fullContext([]*models.Employee{{FirstName: "Jane", LastName: "Doe"}})

	outPath, diags, err := filler.FillChunk(dir, templatePath, 0, mappings, fields, rc)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "fill", diags[0].Stage)
	assert.Equal(t, "Name1", diags[0].Subject)

	count, err := api.PageCountFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// A chunk whose mapping resolves entirely empty still emits its sheet,
// unfilled.
func TestFillChunkAllValuesEmpty(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeTempPDF(t, dir, "template.pdf", formTemplatePDF("Helper1"))

	filler := NewPageFiller(testLogger())
	fields, err := filler.TemplateFieldNames(templatePath)
	require.NoError(t, err)

	mappings := map[string]string{"helperFullName_1": "Helper1"}
	rc := fullContext([]*models.Employee{{FirstName: "Solo", HasHelper: false}})

	outPath, diags, err := filler.FillChunk(dir, templatePath, 0, mappings, fields, rc)
	require.NoError(t, err)
	assert.Empty(t, diags)

	count, err := api.PageCountFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
