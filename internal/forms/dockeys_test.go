package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sitedesk/accessform/internal/models"
)

func TestDocumentTitle(t *testing.T) {
	tests := map[string]string{
		"photoUrl":              "Photo",
		"idCopyUrl":             "Id Copy",
		"medicalCertificateUrl": "Medical Certificate",
		"helperPhotoUrl":        "Helper Photo",
		"helperIdCopyUrl":       "Helper IdCopy",
	}
	for key, want := range tests {
		assert.Equal(t, want, DocumentTitle(key), key)
	}
}

func TestHelperAttribute(t *testing.T) {
	assert.Equal(t, "photoUrl", helperAttribute("helperPhotoUrl"))
	assert.Equal(t, "idCopyUrl", helperAttribute("helperIdCopyUrl"))
	assert.Equal(t, "", helperAttribute("helper"))
}

func TestIsCertificateKey(t *testing.T) {
	assert.True(t, isCertificateKey("medicalCertificateUrl"))
	assert.False(t, isCertificateKey("photoUrl"))
	assert.False(t, isCertificateKey("idCopyUrl"))
}

func TestDocumentURL(t *testing.T) {
	w := &models.Employee{
		PhotoURL:              "photos/w.jpg",
		IDCopyURL:             "ids/w.jpg",
		MedicalCertificateURL: "certs/w.pdf",
		HasHelper:             true,
		Helper:                &models.Helper{PhotoURL: "photos/h.jpg"},
	}

	assert.Equal(t, "photos/w.jpg", documentURL("photoUrl", w))
	assert.Equal(t, "ids/w.jpg", documentURL("idCopyUrl", w))
	assert.Equal(t, "certs/w.pdf", documentURL("medicalCertificateUrl", w))
	assert.Equal(t, "photos/h.jpg", documentURL("helperPhotoUrl", w))
	assert.Equal(t, "", documentURL("helperIdCopyUrl", w))
	assert.Equal(t, "", documentURL("unknownKeyUrl", w))

	// Helper keys are gated on hasHelper, not just on the record.
	w.HasHelper = false
	assert.Equal(t, "", documentURL("helperPhotoUrl", w))
}
