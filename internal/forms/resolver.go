package forms

import (
	"regexp"
	"strconv"
	"time"

	"github.com/sitedesk/accessform/internal/models"
)

// Indexed logical keys look like "employeeFullName_2". The index is 1-based
// into the current page's chunk, not into the global employee list.
var indexedKeyRE = regexp.MustCompile(`^([a-zA-Z]+)_(\d+)$`)

// ResolveContext bundles everything a logical field can draw from. Now is
// frozen once per pipeline run so every page of one run carries the same date.
type ResolveContext struct {
	Project *models.Project
	Company *models.CompanyInfo
	Chunk   []*models.Employee
	Now     time.Time
}

// Resolve maps a logical field name to its display text. Unknown keys,
// out-of-range indexes and absent records all resolve to "" rather than an
// error; which absent values fall back to "N/A" instead is part of the
// document contract and must not be unified.
func Resolve(key string, rc ResolveContext) string {
	switch key {
	case "todaysDate":
		return rc.Now.Format("2006-01-02")
	case "projectName":
		if rc.Project != nil {
			return rc.Project.Name
		}
		return ""
	case "projectAddress":
		if rc.Project != nil {
			return rc.Project.Address
		}
		return ""
	case "companyName":
		if rc.Company != nil {
			return rc.Company.Name
		}
		return ""
	case "companyAddress":
		if rc.Company != nil {
			return rc.Company.Address
		}
		return ""
	case "companyPhone":
		if rc.Company != nil {
			return rc.Company.Phone
		}
		return ""
	case "companyEmail":
		if rc.Company != nil {
			return rc.Company.Email
		}
		return ""
	case "companyOwnerName":
		if rc.Company != nil {
			return rc.Company.OwnerName
		}
		return ""
	case "principalContractorName":
		if pc := contractor(rc.Project); pc != nil {
			return pc.Name
		}
		return ""
	case "principalContractorPhone":
		if pc := contractor(rc.Project); pc != nil {
			return pc.Phone
		}
		return ""
	case "principalContractorEmail":
		if pc := contractor(rc.Project); pc != nil {
			return pc.Email
		}
		return ""
	}

	m := indexedKeyRE.FindStringSubmatch(key)
	if m == nil {
		return ""
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return ""
	}
	pos := idx - 1
	if pos < 0 || pos >= len(rc.Chunk) {
		return ""
	}
	return resolveWorkerField(m[1], rc.Chunk[pos])
}

func resolveWorkerField(base string, w *models.Employee) string {
	switch base {
	case "employeeFullName":
		return w.FullName()
	case "employeeFirstName":
		return w.FirstName
	case "employeeLastName":
		return w.LastName
	case "employeeIdNumber":
		return orNA(w.IDNumber)
	case "employeeCompanyNumber":
		return orNA(w.CompanyNumber)
	case "employeePhone":
		return orNA(w.Phone)
	case "employeeIsDriver":
		if w.IsDriver {
			return "Yes"
		}
		return "No"
	case "helperFullName", "helperFirstName", "helperLastName", "helperIdNumber":
		if !w.HasHelper {
			return ""
		}
		h := w.Helper
		switch base {
		case "helperIdNumber":
			if h == nil {
				return "N/A"
			}
			return orNA(h.IDNumber)
		case "helperFullName":
			if h == nil {
				return ""
			}
			return h.FullName()
		case "helperFirstName":
			if h == nil {
				return ""
			}
			return h.FirstName
		default:
			if h == nil {
				return ""
			}
			return h.LastName
		}
	}
	return ""
}

func contractor(p *models.Project) *models.PrincipalContractor {
	if p == nil {
		return nil
	}
	return p.PrincipalContractor
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

var scalarKeys = []string{
	"todaysDate",
	"projectName",
	"projectAddress",
	"companyName",
	"companyAddress",
	"companyPhone",
	"companyEmail",
	"companyOwnerName",
	"principalContractorName",
	"principalContractorPhone",
	"principalContractorEmail",
}

var indexedKeyBases = []string{
	"employeeFullName",
	"employeeFirstName",
	"employeeLastName",
	"employeeIdNumber",
	"employeeCompanyNumber",
	"employeePhone",
	"employeeIsDriver",
	"helperFullName",
	"helperFirstName",
	"helperLastName",
	"helperIdNumber",
}

// MappingKeys enumerates every logical key the resolver can answer for a
// given sheet capacity. Mapping editors must offer exactly this vocabulary.
func MappingKeys(maxEmployees int) []string {
	if maxEmployees < 1 {
		maxEmployees = 1
	}
	keys := make([]string, 0, len(scalarKeys)+len(indexedKeyBases)*maxEmployees)
	keys = append(keys, scalarKeys...)
	for i := 1; i <= maxEmployees; i++ {
		for _, base := range indexedKeyBases {
			keys = append(keys, base+"_"+strconv.Itoa(i))
		}
	}
	return keys
}
