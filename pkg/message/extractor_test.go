package message_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autogmail/engine/internal/models"
	"github.com/autogmail/engine/pkg/message"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestExtractBody_PrefersPlainText(t *testing.T) {
	plain := models.MessagePart{MimeType: "text/plain", Body: b64("Hi there")}
	html := models.MessagePart{MimeType: "text/html", Body: b64("<p>Hi there in HTML</p>")}

	// Plain text wins regardless of the order the parts arrive in.
	for _, parts := range [][]models.MessagePart{
		{plain, html},
		{html, plain},
	} {
		msg := models.Message{Parts: parts}
		assert.Equal(t, "Hi there", message.ExtractBody(msg, "snippet"))
	}
}

func TestExtractBody_HTMLFallbackIsCleaned(t *testing.T) {
	msg := models.Message{Parts: []models.MessagePart{
		{MimeType: "text/html", Body: b64("<div>Hello</div><div>World</div>")},
	}}
	assert.Equal(t, "Hello\nWorld", message.ExtractBody(msg, "snippet"))
}

func TestExtractBody_SimpleMessage(t *testing.T) {
	msg := models.Message{
		MessagePart: models.MessagePart{MimeType: "text/plain", Body: b64("inline body")},
	}
	assert.Equal(t, "inline body", message.ExtractBody(msg, "snippet"))
}

func TestExtractBody_UnpaddedEncoding(t *testing.T) {
	msg := models.Message{
		MessagePart: models.MessagePart{MimeType: "text/plain", Body: base64.RawURLEncoding.EncodeToString([]byte("no padding"))},
	}
	assert.Equal(t, "no padding", message.ExtractBody(msg, "preview"))
}

func TestExtractBody_SnippetFallback(t *testing.T) {
	tests := []struct {
		name string
		msg  models.Message
	}{
		{
			name: "undecodable plain body",
			msg: models.Message{
				MessagePart: models.MessagePart{MimeType: "text/plain", Body: "!!!not base64!!!"},
			},
		},
		{
			name: "undecodable part",
			msg: models.Message{Parts: []models.MessagePart{
				{MimeType: "text/plain", Body: "!!!not base64!!!"},
			}},
		},
		{
			name: "invalid utf8 part",
			msg: models.Message{Parts: []models.MessagePart{
				{MimeType: "text/plain", Body: base64.URLEncoding.EncodeToString([]byte{0xff, 0xfe})},
			}},
		},
		{
			name: "empty payload",
			msg:  models.Message{},
		},
		{
			name: "unsupported mime types only",
			msg: models.Message{Parts: []models.MessagePart{
				{MimeType: "image/png", Body: b64("binary")},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "preview", message.ExtractBody(tt.msg, "preview"))
		})
	}
}
