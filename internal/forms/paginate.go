package forms

import "github.com/sitedesk/accessform/internal/models"

// Paginate splits workers into chunks of at most pageSize, preserving order.
// The final chunk may be shorter. pageSize values below 1 are treated as 1.
func Paginate(workers []*models.Employee, pageSize int) [][]*models.Employee {
	if pageSize < 1 {
		pageSize = 1
	}
	var chunks [][]*models.Employee
	for start := 0; start < len(workers); start += pageSize {
		end := start + pageSize
		if end > len(workers) {
			end = len(workers)
		}
		chunks = append(chunks, workers[start:end])
	}
	return chunks
}
