package models

// These structs define the JSON payloads exchanged with the caller of the
// access-form function.

// FillAccessFormRequest is the input for the access-form function.
type FillAccessFormRequest struct {
	ProjectID   string   `json:"projectId"`
	EmployeeIDs []string `json:"employeeIds"`
}

// Diagnostic records a non-fatal skip that happened during generation,
// e.g. a mapped PDF field missing from the template or an unreadable
// supporting document.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

// FillAccessFormResponse is the structured result of a generation run.
// The caller always receives one of these, never a raw error.
type FillAccessFormResponse struct {
	Success     bool         `json:"success"`
	FormURL     string       `json:"formUrl,omitempty"`
	Error       string       `json:"error,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
