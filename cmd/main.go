package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/autogmail/engine/internal/models"
	"github.com/autogmail/engine/internal/types"
	"github.com/autogmail/engine/pkg/chunker"
	"github.com/autogmail/engine/pkg/cleaner"
	cfgPkg "github.com/autogmail/engine/pkg/config"
	"github.com/autogmail/engine/pkg/llm"
	"github.com/autogmail/engine/pkg/message"
	"github.com/autogmail/engine/pkg/rag"
	"github.com/autogmail/engine/pkg/store"
	"github.com/autogmail/engine/server"
)

type flags struct {
	configPath string
	tenantID   string
	ingestPath string
	syncPath   string
	draftText  string
	serve      bool
	addr       string
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	f := parseFlags()

	if err := run(f); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to config file")
	flag.StringVar(&f.tenantID, "tenant", "", "Tenant identifier scoping all indexed state")
	flag.StringVar(&f.ingestPath, "ingest", "", "Plain-text document to index")
	flag.StringVar(&f.syncPath, "sync", "", "JSON dump of sent messages to index")
	flag.StringVar(&f.draftText, "draft", "", "Email text to draft a reply for")
	flag.BoolVar(&f.serve, "serve", false, "Start the HTTP API server")
	flag.StringVar(&f.addr, "addr", ":8080", "API server listen address")
	flag.Parse()
	return f
}

func run(f flags) error {
	cfg, err := cfgPkg.LoadConfig(f.configPath)
	if err != nil {
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config error: %v", e)
		}
		return fmt.Errorf("invalid configuration")
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.store.Close()

	if !engine.embedder.Available() {
		color.Yellow("warning: embedding model unavailable, indexing and retrieval will no-op")
	}

	switch {
	case f.serve:
		return serveAPI(cfg, engine, f.addr)
	case f.ingestPath != "":
		return ingestFile(engine, f.tenantID, f.ingestPath)
	case f.syncPath != "":
		return syncMessages(cfg, engine, f.tenantID, f.syncPath)
	case f.draftText != "":
		return draftReply(cfg, engine, f.tenantID, f.draftText)
	default:
		flag.Usage()
		return fmt.Errorf("one of -serve, -ingest, -sync or -draft is required")
	}
}

type engine struct {
	embedder  *llm.Embedder
	store     *store.TenantStore
	indexer   *rag.Indexer
	retriever *rag.Retriever
	drafter   *llm.Drafter
}

func buildEngine(cfg *cfgPkg.Config) (*engine, error) {
	embedder := llm.NewEmbedderWithConfig(types.EmbedderConfig{
		BaseURL:   cfg.Embedding.BaseURL,
		Model:     cfg.Embedding.Model,
		RateLimit: cfg.Embedding.RateLimit,
	})

	tenantStore, err := store.NewWithConfig(store.TenantStoreConfig{
		ConnString: cfg.Database.URL,
		TableName:  cfg.Database.TableName,
		VectorDim:  cfg.Database.VectorDim,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	c, err := chunker.NewWithConfig(types.ChunkerConfig{
		WindowSize: cfg.Chunker.WindowSize,
		Overlap:    cfg.Chunker.Overlap,
	})
	if err != nil {
		tenantStore.Close()
		return nil, err
	}

	drafter, err := llm.NewDrafterWithConfig(llm.DrafterConfig{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		BaseURL:     cfg.LLM.BaseURL,
	})
	if err != nil {
		tenantStore.Close()
		return nil, fmt.Errorf("failed to initialize draft engine: %w", err)
	}

	return &engine{
		embedder:  embedder,
		store:     tenantStore,
		indexer:   rag.NewIndexer(c, embedder, tenantStore),
		retriever: rag.NewRetriever(embedder, tenantStore),
		drafter:   drafter,
	}, nil
}

func serveAPI(cfg *cfgPkg.Config, e *engine, addr string) error {
	s := server.New(server.Config{
		TopK:          cfg.Retrieval.TopK,
		MinBodyLength: cfg.Sync.MinBodyLength,
	}, e.embedder, e.indexer, e.retriever, e.drafter)
	return s.ListenAndServe(addr)
}

func requireTenant(tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("-tenant is required")
	}
	return nil
}

func ingestFile(e *engine, tenantID, path string) error {
	if err := requireTenant(tenantID); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	count, err := e.indexer.AddDocument(context.Background(), tenantID, models.SourceText{
		Text: string(data),
		Metadata: map[string]interface{}{
			"filename": filepath.Base(path),
			"type":     "policy",
		},
	})
	if err != nil {
		return err
	}

	if count == 0 {
		color.Yellow("%s: not indexed", path)
		return nil
	}
	color.Green("%s: indexed %d chunks for tenant %s", path, count, tenantID)
	return nil
}

// dumpMessage mirrors the provider's message shape: id, preview snippet and
// a payload of base64url-encoded mime parts.
type dumpMessage struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Payload struct {
		MimeType string `json:"mime_type"`
		Body     string `json:"body"`
		Parts    []struct {
			MimeType string `json:"mime_type"`
			Body     string `json:"body"`
		} `json:"parts"`
	} `json:"payload"`
}

func syncMessages(cfg *cfgPkg.Config, e *engine, tenantID, path string) error {
	if err := requireTenant(tenantID); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var messages []dumpMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("failed to parse message dump: %w", err)
	}

	bar := getProgressBar(len(messages), "Syncing sent emails")
	synced := 0
	for _, m := range messages {
		bar.Add(1)

		msg := models.Message{
			MessagePart: models.MessagePart{MimeType: m.Payload.MimeType, Body: m.Payload.Body},
		}
		for _, part := range m.Payload.Parts {
			msg.Parts = append(msg.Parts, models.MessagePart{MimeType: part.MimeType, Body: part.Body})
		}

		cleanedText := cleaner.Clean(message.ExtractBody(msg, m.Snippet))
		if len(cleanedText) < cfg.Sync.MinBodyLength {
			continue
		}

		count, err := e.indexer.AddDocument(context.Background(), tenantID, models.SourceText{
			Text: cleanedText,
			Metadata: map[string]interface{}{
				"source":   "sent_email",
				"email_id": m.ID,
			},
			IDPrefix: fmt.Sprintf("email_%s", m.ID),
		})
		if err != nil {
			return err
		}
		if count > 0 {
			synced++
		}
	}
	fmt.Println()

	color.Green("synced %d of %d messages for tenant %s", synced, len(messages), tenantID)
	return nil
}

func draftReply(cfg *cfgPkg.Config, e *engine, tenantID, emailText string) error {
	if err := requireTenant(tenantID); err != nil {
		return err
	}

	ctx := context.Background()
	cleanedText := cleaner.Clean(emailText)

	result, err := e.retriever.QuerySimilar(ctx, tenantID, cleanedText, cfg.Retrieval.TopK)
	if err != nil {
		return err
	}
	if len(result.Chunks) == 0 {
		color.Yellow("no indexed context found for tenant %s", tenantID)
	}

	draft, err := e.drafter.Draft(ctx, cleanedText, result.Texts())
	if err != nil {
		return err
	}

	color.Cyan("--- draft reply ---")
	fmt.Println(draft)
	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("emails"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
