// Package extract turns uploaded resume documents into plain text.
//
// Extraction is best-effort by contract: corrupt files, encrypted
// content, or parser panics all degrade to an empty string. Callers
// treat an empty or whitespace-only result as "nothing usable", never
// as an error.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"resumatch-gateway/pkg/logging/logging"

	"go.uber.org/zap"
)

// Text extracts plain text from raw PDF bytes, one page after another
// joined by newlines, in page order. It never returns an error and
// never panics.
func Text(ctx context.Context, data []byte) string {
	text, err := pdfText(data)
	if err != nil {
		logging.L(ctx).Warn("pdf extraction failed",
			zap.Int("size_bytes", len(data)),
			zap.Error(err),
		)
		return ""
	}
	return text
}

// pdfText does the actual parsing. The pdf package panics on some
// malformed inputs, so the recover here is part of the contract, not
// paranoia.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		// A single unreadable page should not discard the rest.
		content, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, "\n"), nil
}
