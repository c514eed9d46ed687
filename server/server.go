package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/autogmail/engine/internal/models"
	"github.com/autogmail/engine/internal/types"
	"github.com/autogmail/engine/pkg/cleaner"
	"github.com/autogmail/engine/pkg/message"
	"github.com/autogmail/engine/pkg/rag"
)

type Config struct {
	TopK          int
	MinBodyLength int
}

// Server exposes the indexing and draft-generation flows as a JSON API.
type Server struct {
	config    Config
	embedder  types.Embedder
	indexer   *rag.Indexer
	retriever *rag.Retriever
	drafter   types.Generator
}

func New(config Config, embedder types.Embedder, indexer *rag.Indexer, retriever *rag.Retriever, drafter types.Generator) *Server {
	if config.TopK == 0 {
		config.TopK = rag.DefaultTopK
	}
	if config.MinBodyLength == 0 {
		config.MinBodyLength = 50
	}
	return &Server{
		config:    config,
		embedder:  embedder,
		indexer:   indexer,
		retriever: retriever,
		drafter:   drafter,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/documents/upload", s.handleUpload)
	mux.HandleFunc("/api/v1/gmail/sync-sent", s.handleSyncSent)
	mux.HandleFunc("/api/v1/generate/draft", s.handleDraft)
	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	log.Printf("starting API server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "ok",
		"embedding_available": s.embedder.Available(),
	})
}

type uploadRequest struct {
	TenantID string `json:"tenant_id"`
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// handleUpload indexes an uploaded policy document. The caller is
// responsible for format-specific extraction; the body arrives as plain
// UTF-8 text.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.TenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	count, err := s.indexer.AddDocument(r.Context(), req.TenantID, models.SourceText{
		Text: req.Text,
		Metadata: map[string]interface{}{
			"filename": req.Filename,
			"type":     "policy",
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("upload failed: %v", err))
		return
	}

	status := "Indexed successfully"
	if count == 0 {
		status = "Not indexed"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":    req.Filename,
		"char_count":  len(req.Text),
		"chunk_count": count,
		"status":      status,
	})
}

type syncMessage struct {
	ID      string         `json:"id"`
	Snippet string         `json:"snippet"`
	Payload messagePayload `json:"payload"`
}

type messagePayload struct {
	MimeType string        `json:"mime_type"`
	Body     string        `json:"body"`
	Parts    []messagePart `json:"parts"`
}

type messagePart struct {
	MimeType string `json:"mime_type"`
	Body     string `json:"body"`
}

type syncRequest struct {
	TenantID string        `json:"tenant_id"`
	Messages []syncMessage `json:"messages"`
}

// handleSyncSent ingests historical sent emails: extract the best body,
// clean it, and index anything long enough to carry a usable writing
// sample. Ids are derived from the message id so a re-sync overwrites in
// place instead of duplicating.
func (s *Server) handleSyncSent(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.TenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	synced := 0
	for _, m := range req.Messages {
		body := message.ExtractBody(toModel(m.Payload), m.Snippet)
		cleanedText := cleaner.Clean(body)
		if len(cleanedText) < s.config.MinBodyLength {
			continue
		}

		count, err := s.indexer.AddDocument(r.Context(), req.TenantID, models.SourceText{
			Text: cleanedText,
			Metadata: map[string]interface{}{
				"source":   "sent_email",
				"email_id": m.ID,
			},
			IDPrefix: fmt.Sprintf("email_%s", m.ID),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("sync failed: %v", err))
			return
		}
		if count > 0 {
			synced++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"synced_count": synced,
	})
}

type draftRequest struct {
	TenantID  string `json:"tenant_id"`
	EmailText string `json:"email_text"`
}

// handleDraft cleans the incoming email, retrieves the nearest policy
// context from the tenant's collection and asks the generator for a reply
// draft grounded on it.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.TenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	cleanedText := cleaner.Clean(req.EmailText)

	result, err := s.retriever.QuerySimilar(r.Context(), req.TenantID, cleanedText, s.config.TopK)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("retrieval failed: %v", err))
		return
	}
	contextChunks := result.Texts()

	draft, err := s.drafter.Draft(r.Context(), cleanedText, contextChunks)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("generation failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"draft":        draft,
		"context_used": contextChunks,
	})
}

func toModel(p messagePayload) models.Message {
	msg := models.Message{
		MessagePart: models.MessagePart{MimeType: p.MimeType, Body: p.Body},
	}
	for _, part := range p.Parts {
		msg.Parts = append(msg.Parts, models.MessagePart{MimeType: part.MimeType, Body: part.Body})
	}
	return msg
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
