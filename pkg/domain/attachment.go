package domain

type AttachmentKind string

const (
	AttachmentKindImage    AttachmentKind = "image"
	AttachmentKindDocument AttachmentKind = "document"
)

// Attachment is a processed upload awaiting consumption by the next chat
// turn of its session. For images Content is a data URI carrying the MIME
// type; for documents it is the extracted text wrapped with its preamble.
type Attachment struct {
	Kind     AttachmentKind
	MimeType string
	Content  string
}
