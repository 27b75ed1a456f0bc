package forms

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfConf returns the relaxed pdfcpu configuration used for every operation.
// Estate templates and uploaded documents come from many producers, so strict
// validation would reject files that are perfectly usable.
func pdfConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

const (
	// Caption near the top of supporting-document pages.
	captionDesc = "fontname:Helvetica, points:16, pos:tc, off:0 -36, scale:1 abs, rot:0"
	// Larger centered caption for certificate title pages.
	titleDesc = "fontname:Helvetica, points:24, pos:c, scale:1 abs, rot:0"
)

// stampText burns a single line of text onto page 1 of inPath.
func stampText(inPath, outPath, text, desc string, conf *model.Configuration) error {
	if err := api.AddTextWatermarksFile(inPath, outPath, []string{"1"}, true, text, desc, conf); err != nil {
		return fmt.Errorf("failed to stamp text onto %s: %w", inPath, err)
	}
	return nil
}

// blankPagePDF assembles a minimal valid single-page A4 document. pdfcpu's
// file API has no empty-page constructor, so the few objects and the xref
// table are written out by hand with computed offsets.
func blankPagePDF() []byte {
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595.27 841.89] /Resources << >> >>",
	})
}

// buildPDF serializes numbered objects (1-based, object 1 is the catalog)
// into a document with a correct xref table.
func buildPDF(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefPos)
	return buf.Bytes()
}

// writeTitlePage creates a one-page PDF at outPath carrying only the caption.
func writeTitlePage(blankPath, outPath, caption string, conf *model.Configuration) error {
	if err := os.WriteFile(blankPath, blankPagePDF(), 0o644); err != nil {
		return fmt.Errorf("failed to write blank page: %w", err)
	}
	return stampText(blankPath, outPath, caption, titleDesc, conf)
}
