package forms

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/sync/errgroup"

	"github.com/sitedesk/accessform/internal/models"
)

// BlobFetcher reads a stored object's bytes.
type BlobFetcher interface {
	GetBytes(ctx context.Context, path string) ([]byte, error)
}

// Bundler produces the supporting-document pages appended after the filled
// form sheets: certificate PDFs get a title page plus their own pages, photos
// and ID copies become one captioned page each. A single unreadable document
// is skipped with a diagnostic; Bundle never fails the run.
type Bundler struct {
	blob       BlobFetcher
	conf       *model.Configuration
	log        *slog.Logger
	fetchLimit int
}

func NewBundler(blob BlobFetcher, log *slog.Logger) *Bundler {
	return &Bundler{blob: blob, conf: pdfConf(), log: log, fetchLimit: 8}
}

// bundleItem is one worker/document-key pair with a stored URL.
type bundleItem struct {
	owner string // display name of the worker or helper
	key   string
	url   string
	data  []byte
	err   error
}

// Bundle walks workers in the order given and, within each worker, the
// document keys in estate-configured order, and returns the resulting page
// PDFs in exactly that order. Fetches run concurrently but the output order
// and each item's fate are independent of fetch completion.
func (b *Bundler) Bundle(ctx context.Context, dir string, workers []*models.Employee, keys []string) ([]string, []models.Diagnostic) {
	var items []*bundleItem
	for _, w := range workers {
		for _, key := range keys {
			owner := w.FullName()
			if isHelperKey(key) {
				if !w.HasHelper || w.Helper == nil {
					continue
				}
				owner = w.Helper.FullName()
			}
			url := documentURL(key, w)
			if url == "" {
				// Not every worker carries every optional document.
				continue
			}
			items = append(items, &bundleItem{owner: owner, key: key, url: url})
		}
	}
	if len(items) == 0 {
		return nil, nil
	}

	b.prefetch(ctx, items)

	var pages []string
	var diags []models.Diagnostic
	for i, item := range items {
		caption := fmt.Sprintf("%s - %s", item.owner, DocumentTitle(item.key))
		logCtx := b.log.With("owner", item.owner, "documentKey", item.key)
		if item.err != nil {
			logCtx.Warn("Failed to fetch supporting document, skipping.", "error", item.err)
			diags = append(diags, diagnostic(item, item.err))
			continue
		}
		var (
			itemPages []string
			err       error
		)
		if isCertificateKey(item.key) {
			itemPages, err = b.certificatePages(dir, i, item, caption)
		} else {
			itemPages, err = b.imagePage(dir, i, item, caption)
		}
		if err != nil {
			logCtx.Warn("Failed to render supporting document, skipping.", "error", err)
			diags = append(diags, diagnostic(item, err))
			continue
		}
		pages = append(pages, itemPages...)
	}
	return pages, diags
}

// prefetch loads every item's bytes with bounded concurrency. Failures are
// recorded on the item, never propagated, so one bad fetch cannot cancel the
// others.
func (b *Bundler) prefetch(ctx context.Context, items []*bundleItem) {
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.fetchLimit)
	for _, item := range items {
		item := item
		eg.Go(func() error {
			item.data, item.err = b.blob.GetBytes(gctx, item.url)
			return nil
		})
	}
	_ = eg.Wait()
}

// certificatePages writes the fetched PDF out, validates it, and prefixes it
// with a generated title page.
func (b *Bundler) certificatePages(dir string, index int, item *bundleItem, caption string) ([]string, error) {
	certPath := filepath.Join(dir, fmt.Sprintf("bundle_%03d_cert.pdf", index))
	if err := os.WriteFile(certPath, item.data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write certificate: %w", err)
	}
	if _, err := api.PageCountFile(certPath); err != nil {
		return nil, fmt.Errorf("certificate is not a readable PDF: %w", err)
	}

	blankPath := filepath.Join(dir, fmt.Sprintf("bundle_%03d_blank.pdf", index))
	titlePath := filepath.Join(dir, fmt.Sprintf("bundle_%03d_title.pdf", index))
	if err := writeTitlePage(blankPath, titlePath, caption, b.conf); err != nil {
		return nil, fmt.Errorf("failed to create title page: %w", err)
	}
	return []string{titlePath, certPath}, nil
}

// imagePage renders the fetched image scaled-to-fit and centered on a new
// page with the caption near the top. JPEG is tried first, then PNG; bytes
// decodable as neither skip the document.
func (b *Bundler) imagePage(dir string, index int, item *bundleItem, caption string) ([]string, error) {
	ext := ".jpg"
	if _, err := jpeg.DecodeConfig(bytes.NewReader(item.data)); err != nil {
		if _, err := png.DecodeConfig(bytes.NewReader(item.data)); err != nil {
			return nil, fmt.Errorf("document is neither JPEG nor PNG")
		}
		ext = ".png"
	}

	imgPath := filepath.Join(dir, fmt.Sprintf("bundle_%03d_img%s", index, ext))
	if err := os.WriteFile(imgPath, item.data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	imp, err := api.Import("form:A4, pos:c, s: 0.75 rel", types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build import config: %w", err)
	}
	pagePath := filepath.Join(dir, fmt.Sprintf("bundle_%03d_page.pdf", index))
	if err := api.ImportImagesFile([]string{imgPath}, pagePath, imp, b.conf); err != nil {
		return nil, fmt.Errorf("failed to import image onto page: %w", err)
	}

	captionedPath := filepath.Join(dir, fmt.Sprintf("bundle_%03d_captioned.pdf", index))
	if err := stampText(pagePath, captionedPath, caption, captionDesc, b.conf); err != nil {
		return nil, err
	}
	return []string{captionedPath}, nil
}

func diagnostic(item *bundleItem, err error) models.Diagnostic {
	return models.Diagnostic{
		Stage:   "bundle",
		Subject: fmt.Sprintf("%s/%s", item.owner, item.key),
		Detail:  err.Error(),
	}
}
