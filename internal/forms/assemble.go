package forms

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Assemble merges page groups into one document at outPath, preserving the
// group order and the file order within each group. Empty groups are simply
// absent from the output; no divider pages are inserted.
func Assemble(outPath string, pageGroups ...[]string) error {
	var files []string
	for _, group := range pageGroups {
		files = append(files, group...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no pages to assemble")
	}
	if len(files) == 1 {
		return copyFile(files[0], outPath)
	}
	if err := api.MergeCreateFile(files, outPath, false, pdfConf()); err != nil {
		return fmt.Errorf("failed to merge %d page groups: %w", len(pageGroups), err)
	}
	return nil
}
