package forms

import (
	"strings"
	"unicode"

	"github.com/sitedesk/accessform/internal/models"
)

// Supported supporting-document keys. Estates reference these in their
// requiredDocuments config; an explicit lookup table keeps attribute access
// type-safe instead of reflecting over record fields.
var employeeDocURL = map[string]func(*models.Employee) string{
	"photoUrl":              func(e *models.Employee) string { return e.PhotoURL },
	"idCopyUrl":             func(e *models.Employee) string { return e.IDCopyURL },
	"medicalCertificateUrl": func(e *models.Employee) string { return e.MedicalCertificateURL },
}

var helperDocURL = map[string]func(*models.Helper) string{
	"photoUrl":  func(h *models.Helper) string { return h.PhotoURL },
	"idCopyUrl": func(h *models.Helper) string { return h.IDCopyURL },
}

// isHelperKey reports whether a document key addresses the worker's helper,
// e.g. "helperPhotoUrl".
func isHelperKey(key string) bool {
	return strings.HasPrefix(key, "helper")
}

// helperAttribute strips the "helper" prefix and lower-cases the first
// remaining character: "helperPhotoUrl" -> "photoUrl".
func helperAttribute(key string) string {
	rest := strings.TrimPrefix(key, "helper")
	if rest == "" {
		return rest
	}
	return strings.ToLower(rest[:1]) + rest[1:]
}

// documentURL looks up the stored URL for a document key on a worker,
// following helper keys onto the helper record. Returns "" when the key is
// unknown or the owner has no such document.
func documentURL(key string, w *models.Employee) string {
	if isHelperKey(key) {
		if !w.HasHelper || w.Helper == nil {
			return ""
		}
		if get, ok := helperDocURL[helperAttribute(key)]; ok {
			return get(w.Helper)
		}
		return ""
	}
	if get, ok := employeeDocURL[key]; ok {
		return get(w)
	}
	return ""
}

// isCertificateKey: certificate documents are stored as PDFs and get their
// own pages copied in; everything else is treated as an image.
func isCertificateKey(key string) bool {
	return strings.Contains(key, "Certificate")
}

// DocumentTitle derives the human caption for a document key: the trailing
// "Url" is stripped; helper keys keep their remainder with a "Helper "
// prefix, other keys get spaces inserted before internal capitals and the
// first letter capitalized. "idCopyUrl" -> "Id Copy",
// "helperIdCopyUrl" -> "Helper IdCopy".
func DocumentTitle(key string) string {
	base := strings.TrimSuffix(key, "Url")
	if isHelperKey(base) {
		return "Helper " + strings.TrimPrefix(base, "helper")
	}
	var b strings.Builder
	for i, r := range base {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
