package message

import (
	"encoding/base64"
	"unicode/utf8"

	"github.com/autogmail/engine/internal/models"
	"github.com/autogmail/engine/pkg/cleaner"
)

// ExtractBody selects the best textual representation of a mail payload.
//
// For a multipart message all parts are scanned once: any text/plain part
// that decodes to non-empty UTF-8 wins over any text/html part regardless of
// part order; an HTML candidate is stripped through the cleaner. A simple
// message decodes its inline body directly, with no cleaning. When nothing
// decodes, the provider-supplied snippet is returned unchanged. Decode
// failures never propagate; each one falls through to the next candidate.
func ExtractBody(msg models.Message, snippet string) string {
	if msg.Multipart() {
		if body := scanParts(msg.Parts); body != "" {
			return body
		}
		return snippet
	}

	if text, ok := decodeBody(msg.Body); ok && text != "" {
		return text
	}
	return snippet
}

func scanParts(parts []models.MessagePart) string {
	var htmlBody string
	for _, part := range parts {
		switch part.MimeType {
		case "text/plain":
			if text, ok := decodeBody(part.Body); ok && text != "" {
				return text
			}
		case "text/html":
			if htmlBody != "" {
				continue
			}
			if text, ok := decodeBody(part.Body); ok && text != "" {
				htmlBody = cleaner.Clean(text)
			}
		}
	}
	return htmlBody
}

// decodeBody decodes a base64url part body. Mail providers emit both padded
// and unpadded encodings, so both are tried. Bytes that are not valid UTF-8
// count as a decode failure.
func decodeBody(data string) (string, bool) {
	if data == "" {
		return "", false
	}
	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return "", false
		}
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}
