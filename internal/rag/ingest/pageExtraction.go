package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

func extractPDF(ctx context.Context, path string) ([]commonModels.Page, error) {
	log := logger.WithTrace(ctx)
	log.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		log.Error("failed opening of pdf file", "error", err)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := f.NumPage()
	pages := make([]commonModels.Page, 0, numPages)
	log.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			log.Debug("extractPDF", "null page", i)
			continue
		}

		content, err := protectExtract(ctx, page)
		if err != nil {
			// one unreadable page should not lose the rest of the document
			log.Error("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, commonModels.Page{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// extractDocxTxtRtf reads .odt, .docx, .rtf or plaintext. These formats have
// no reliable page boundaries, so the whole text is reported as page 1.
func extractDocxTxtRtf(ctx context.Context, path string) ([]commonModels.Page, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.WithTrace(ctx).Error("Error extracting content from doc", "error", err)
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}

	return []commonModels.Page{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

func protectExtract(ctx context.Context, page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("pdf page parse panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(config.PageParseTimeout):
		return "", errors.New("timeout")
	}
}
