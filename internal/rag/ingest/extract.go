package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

var logger = logger_i.NewLogger("Ingestion")

var (
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrNoText              = errors.New("no text could be extracted")
)

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".txt", ".md":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

// SupportedDocument reports whether a file name has an extension we can extract.
func SupportedDocument(name string) bool {
	return getDocType(name) != commonModels.ERR
}

// ExtractDocument returns the text of the file at path, page by page.
func ExtractDocument(ctx context.Context, path string) ([]commonModels.Page, commonModels.DocType, error) {
	docType := getDocType(path)
	switch docType {
	case commonModels.PDF:
		pages, err := extractPDF(ctx, path)
		return pages, docType, err
	case commonModels.DOCX, commonModels.TXT:
		pages, err := extractDocxTxtRtf(ctx, path)
		return pages, docType, err
	default:
		return nil, docType, fmt.Errorf("%w: %s", ErrUnsupportedDocument, filepath.Ext(path))
	}
}
