package fileprocessor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/dskvich/chatgpt-websocket-bot/pkg/domain"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/logger"
)

// maxDocumentTextLen bounds the extracted document text to keep prompts
// from growing excessively large.
const maxDocumentTextLen = 15000

const extractionFallback = "Could not extract text from the PDF file."

type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Process converts an uploaded file into a prompt-ready attachment.
// Images are encoded as base64 data URIs; PDFs are reduced to their
// extracted text. Any other content type is rejected.
func (p *Processor) Process(data []byte, mimeType string) (domain.Attachment, error) {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return domain.Attachment{
			Kind:     domain.AttachmentKindImage,
			MimeType: mimeType,
			Content:  imageToDataURI(data, mimeType),
		}, nil
	case mimeType == "application/pdf":
		return domain.Attachment{
			Kind:     domain.AttachmentKindDocument,
			MimeType: mimeType,
			Content:  wrapDocumentText(pdfToText(data)),
		}, nil
	default:
		return domain.Attachment{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, mimeType)
	}
}

func imageToDataURI(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func wrapDocumentText(text string) string {
	return "The user uploaded a PDF. The extracted text is as follows:\n---\n" + text + "\n---\n"
}

// pdfToText extracts concatenated page text in page order, truncated to
// maxDocumentTextLen characters. Extraction failure degrades to a fixed
// fallback string instead of failing the upload. The pdf library panics on
// some malformed files, so the recover is part of the failure path.
func pdfToText(data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("extracting pdf text", "panic", r)
			text = extractionFallback
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Error("opening pdf", logger.Err(err))
		return extractionFallback
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			slog.Error("extracting pdf page text", "page", i, logger.Err(err))
			return extractionFallback
		}
		sb.WriteString(pageText)
		if utf8.RuneCountInString(sb.String()) >= maxDocumentTextLen {
			break
		}
	}

	return truncate(sb.String(), maxDocumentTextLen)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
