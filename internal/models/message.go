package models

// MessagePart is a single MIME part of a structured message. Body holds the
// base64url-encoded payload bytes as delivered by the mail provider.
type MessagePart struct {
	MimeType string
	Body     string
}

// Message is a structured mail payload. Either the inline part is set
// (simple single-part message) or Parts is non-empty (multipart, one level
// of nesting only). Read-only once extracted from the upstream source.
type Message struct {
	MessagePart
	Parts []MessagePart
}

// Multipart reports whether the payload carries child parts.
func (m Message) Multipart() bool {
	return len(m.Parts) > 0
}
