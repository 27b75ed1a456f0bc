package models

// Estate is the per-site configuration that drives access-form generation.
// Estates are maintained by estate admins; the pipeline only reads them.
type Estate struct {
	Name              string            `firestore:"name,omitempty"`
	FormTemplateURL   string            `firestore:"formTemplateUrl,omitempty"`
	FormFieldMappings map[string]string `firestore:"formFieldMappings,omitempty"`
	FormMaxEmployees  int               `firestore:"formMaxEmployees,omitempty"`
	RequiredDocuments []string          `firestore:"requiredDocuments,omitempty"`
}

// PageSize returns the number of workers per form sheet, normalizing
// unset or invalid configuration to 1.
func (e *Estate) PageSize() int {
	if e.FormMaxEmployees < 1 {
		return 1
	}
	return e.FormMaxEmployees
}

// PrincipalContractor holds the contact details printed on the form.
type PrincipalContractor struct {
	Name  string `firestore:"name,omitempty"`
	Phone string `firestore:"phone,omitempty"`
	Email string `firestore:"email,omitempty"`
}

// Project is a unit of work linked to at most one estate.
type Project struct {
	Name                string               `firestore:"name,omitempty"`
	Address             string               `firestore:"address,omitempty"`
	EstateID            string               `firestore:"estateId,omitempty"`
	CompanyID           string               `firestore:"companyId,omitempty"`
	PrincipalContractor *PrincipalContractor `firestore:"principalContractor,omitempty"`
}

// CompanyInfo is the tenant-wide company record. It is optional: when it
// is absent the company fields on the form are left blank.
type CompanyInfo struct {
	Name      string `firestore:"name,omitempty"`
	Address   string `firestore:"address,omitempty"`
	Phone     string `firestore:"phone,omitempty"`
	Email     string `firestore:"email,omitempty"`
	OwnerName string `firestore:"ownerName,omitempty"`
}

// Helper is a dependent worker attached to an employee, with its own
// identity and document references.
type Helper struct {
	FirstName string `firestore:"firstName,omitempty"`
	LastName  string `firestore:"lastName,omitempty"`
	IDNumber  string `firestore:"idNumber,omitempty"`
	PhotoURL  string `firestore:"photoUrl,omitempty"`
	IDCopyURL string `firestore:"idCopyUrl,omitempty"`
}

// FullName returns "first last" with single-sided names handled.
func (h *Helper) FullName() string {
	return joinName(h.FirstName, h.LastName)
}

// Employee is a worker to be registered at an estate.
type Employee struct {
	ID                    string   `firestore:"-"`
	FirstName             string   `firestore:"firstName,omitempty"`
	LastName              string   `firestore:"lastName,omitempty"`
	IDNumber              string   `firestore:"idNumber,omitempty"`
	CompanyNumber         string   `firestore:"companyNumber,omitempty"`
	Phone                 string   `firestore:"phone,omitempty"`
	IsDriver              bool     `firestore:"isDriver,omitempty"`
	HasHelper             bool     `firestore:"hasHelper,omitempty"`
	Helper                *Helper  `firestore:"helper,omitempty"`
	PhotoURL              string   `firestore:"photoUrl,omitempty"`
	IDCopyURL             string   `firestore:"idCopyUrl,omitempty"`
	MedicalCertificateURL string   `firestore:"medicalCertificateUrl,omitempty"`
	RegisteredEstateIDs   []string `firestore:"registeredEstateIds,omitempty"`
}

// FullName returns "first last" with single-sided names handled.
func (e *Employee) FullName() string {
	return joinName(e.FirstName, e.LastName)
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
