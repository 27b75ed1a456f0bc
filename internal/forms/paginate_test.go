package forms

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitedesk/accessform/internal/models"
)

func makeWorkers(n int) []*models.Employee {
	workers := make([]*models.Employee, n)
	for i := range workers {
		workers[i] = &models.Employee{ID: fmt.Sprintf("w%d", i), FirstName: fmt.Sprintf("W%d", i)}
	}
	return workers
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		workers  int
		pageSize int
		want     []int // chunk sizes
	}{
		{"empty list", 0, 3, nil},
		{"exact multiple", 6, 3, []int{3, 3}},
		{"short final chunk", 7, 3, []int{3, 3, 1}},
		{"single oversized page", 2, 5, []int{2}},
		{"page size one", 3, 1, []int{1, 1, 1}},
		{"zero page size treated as one", 3, 0, []int{1, 1, 1}},
		{"negative page size treated as one", 2, -4, []int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Paginate(makeWorkers(tt.workers), tt.pageSize)
			require.Len(t, chunks, len(tt.want))
			for i, size := range tt.want {
				assert.Len(t, chunks[i], size)
			}
		})
	}
}

// Concatenating the chunks must always reproduce the input in order, and the
// chunk count must be ceil(n/s).
func TestPaginatePreservesOrder(t *testing.T) {
	for n := 0; n <= 9; n++ {
		for s := 1; s <= 4; s++ {
			workers := makeWorkers(n)
			chunks := Paginate(workers, s)

			wantChunks := (n + s - 1) / s
			require.Len(t, chunks, wantChunks, "n=%d s=%d", n, s)

			var flat []*models.Employee
			for _, c := range chunks {
				flat = append(flat, c...)
			}
			require.Len(t, flat, n, "n=%d s=%d", n, s)
			for i, w := range flat {
				assert.Same(t, workers[i], w, "n=%d s=%d i=%d", n, s, i)
			}
		}
	}
}
