package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dskvich/chatgpt-websocket-bot/pkg/api/response"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/domain"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/logger"
)

type FileProcessor interface {
	Process(data []byte, mimeType string) (domain.Attachment, error)
}

type AttachmentSaver interface {
	Put(sessionID string, attachment domain.Attachment)
}

type upload struct {
	processor FileProcessor
	repo      AttachmentSaver
	writer    response.JSONResponseWriter
}

func NewUpload(processor FileProcessor, repo AttachmentSaver) *upload {
	return &upload{
		processor: processor,
		repo:      repo,
		writer:    response.JSONResponseWriter{},
	}
}

// UploadFile accepts a multipart upload, converts it into a prompt-ready
// attachment and stores it for the session's next chat turn.
func (u *upload) UploadFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		u.writer.WriteErrorResponse(w, http.StatusMethodNotAllowed, "Only POST is allowed.")
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		u.writer.WriteErrorResponse(w, http.StatusBadRequest, "session_id form field is missing or empty.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		u.writer.WriteErrorResponse(w, http.StatusBadRequest, "file form field is missing.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		u.writer.WriteErrorResponse(w, http.StatusInternalServerError, "reading uploaded file: "+err.Error())
		return
	}

	mimeType := header.Header.Get("Content-Type")

	slog.InfoContext(r.Context(), "Received file upload",
		"sessionID", sessionID,
		"fileName", header.Filename,
		"mimeType", mimeType,
		"sizeBytes", len(data),
	)

	attachment, err := u.processor.Process(data, mimeType)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFileType) {
			u.writer.WriteErrorResponse(w, http.StatusBadRequest, "Unsupported file type.")
			return
		}
		slog.ErrorContext(r.Context(), "Processing uploaded file", logger.Err(err))
		u.writer.WriteErrorResponse(w, http.StatusInternalServerError, "processing uploaded file: "+err.Error())
		return
	}

	u.repo.Put(sessionID, attachment)

	u.writer.WriteSuccessResponse(w, map[string]string{
		"message":    "Successfully uploaded and processed " + describe(attachment.Kind) + ".",
		"file_type":  mimeType,
		"session_id": sessionID,
	})
}

func describe(kind domain.AttachmentKind) string {
	if kind == domain.AttachmentKindImage {
		return "an image"
	}
	return "a PDF"
}
