package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/sales-assistant/internal/config"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
	"github.com/kirillkom/sales-assistant/internal/core/usecase"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/chunking"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/extractor"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/llm/openai"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/repository/mongo"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/session/memory"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/vector/pinecone"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/vector/qdrant"
)

type Options struct {
	// Metrics receives pipeline counters; nil disables them.
	Metrics ports.PipelineMetrics
	// WithQueue connects to NATS. Only the API and the worker need it.
	WithQueue bool
}

type App struct {
	Config config.Config

	Embeddings *usecase.EmbeddingClient
	Index      *usecase.VectorIndexClient
	Solutions  *usecase.SolutionsUseCase
	Assistant  *usecase.AssistantUseCase
	Ingest     *usecase.IngestUseCase
	Queue      ports.IngestQueue

	closers []func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	app := &App{Config: cfg}
	executor := resilience.NewExecutor(cfg.Resilience, logger)

	embedder, generator := newProviders(cfg, executor)
	store := newVectorStore(cfg, executor)

	var db *sql.DB
	openPostgres := func() (*sql.DB, error) {
		if db != nil {
			return db, nil
		}
		opened, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, opened); err != nil {
			_ = opened.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		db = opened
		app.closers = append(app.closers, func() { _ = opened.Close() })
		return db, nil
	}

	directory, err := newClientDirectory(ctx, cfg, app, openPostgres)
	if err != nil {
		app.Close()
		return nil, err
	}

	var sessions ports.SessionStore = memory.New()
	if cfg.SessionStore == "postgres" {
		conn, err := openPostgres()
		if err != nil {
			app.Close()
			return nil, err
		}
		sessions = postgres.NewSessionRepository(conn)
	}

	if opts.WithQueue {
		queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init ingest queue: %w", err)
		}
		app.Queue = queue
		app.closers = append(app.closers, queue.Close)
	}

	app.Embeddings = usecase.NewEmbeddingClient(embedder, cfg.EmbedDim, logger, opts.Metrics)
	app.Index = usecase.NewVectorIndexClient(store, app.Embeddings, logger, opts.Metrics)

	composerOpts := usecase.DefaultComposerOptions()
	composerOpts.CompanyName = cfg.CompanyName
	composerOpts.Model = cfg.OpenAIChatModel
	composer := usecase.NewResponseComposer(generator, composerOpts, logger)

	app.Solutions = usecase.NewSolutionsUseCase(app.Index, composer, cfg.CompanyName, logger, opts.Metrics)

	assistantOpts := usecase.DefaultAssistantOptions()
	assistantOpts.CompanyName = cfg.CompanyName
	assistantOpts.GreetingModel = cfg.OpenAIGreetingModel
	app.Assistant = usecase.NewAssistantUseCase(app.Solutions, app.Index, directory, sessions, generator, assistantOpts, logger)

	app.Ingest = usecase.NewIngestUseCase(
		localfs.New(cfg.DocsDir),
		extractor.Default(),
		chunking.NewSplitter(cfg.ChunkMaxTokens, cfg.ChunkOverlapTokens),
		app.Embeddings,
		app.Index,
		logger,
	)

	logger.Info("bootstrap_done",
		"embed_provider", cfg.EmbedProvider,
		"vector_backend", cfg.VectorBackend,
		"client_directory", cfg.ClientDirectory,
		"session_store", cfg.SessionStore,
		"queue", opts.WithQueue,
		"resilience", cfg.Resilience,
	)
	return app, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func validate(cfg config.Config) error {
	checks := []struct {
		key, value string
		allowed    []string
	}{
		{"EMBED_PROVIDER", cfg.EmbedProvider, []string{"openai", "ollama"}},
		{"VECTOR_BACKEND", cfg.VectorBackend, []string{"qdrant", "pinecone"}},
		{"CLIENT_DIRECTORY", cfg.ClientDirectory, []string{"none", "postgres", "mongo"}},
		{"SESSION_STORE", cfg.SessionStore, []string{"memory", "postgres"}},
	}
	for _, c := range checks {
		if !contains(c.allowed, c.value) {
			return fmt.Errorf("%s=%q: expected one of %s", c.key, c.value, strings.Join(c.allowed, ", "))
		}
	}
	if cfg.VectorBackend == "pinecone" && (cfg.PineconeAPIKey == "" || cfg.PineconeIndexHost == "") {
		return fmt.Errorf("VECTOR_BACKEND=pinecone requires PINECONE_API_KEY and PINECONE_INDEX_HOST")
	}
	if cfg.EmbedProvider == "openai" && cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("EMBED_PROVIDER=openai requires OPENAI_API_KEY")
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func newProviders(cfg config.Config, executor *resilience.Executor) (ports.Embedder, ports.TextGenerator) {
	if cfg.EmbedProvider == "ollama" {
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor).WithTimeout(cfg.ProviderTimeout())
		return ollama.NewEmbedder(client), ollama.NewGenerator(client)
	}
	client := openai.New(openai.Options{
		BaseURL:    cfg.OpenAIBaseURL,
		APIKey:     cfg.OpenAIAPIKey,
		ChatModel:  cfg.OpenAIChatModel,
		EmbedModel: cfg.OpenAIEmbedModel,
		Dimensions: cfg.EmbedDim,
		Timeout:    cfg.ProviderTimeout(),
		Executor:   executor,
	})
	return openai.NewEmbedder(client), openai.NewGenerator(client)
}

func newVectorStore(cfg config.Config, executor *resilience.Executor) ports.VectorStore {
	if cfg.VectorBackend == "pinecone" {
		return pinecone.New(cfg.PineconeIndexHost, cfg.PineconeAPIKey, cfg.PineconeNamespace, executor).WithTimeout(cfg.ProviderTimeout())
	}
	return qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, executor).WithTimeout(cfg.ProviderTimeout())
}

func newClientDirectory(ctx context.Context, cfg config.Config, app *App, openPostgres func() (*sql.DB, error)) (ports.ClientDirectory, error) {
	switch cfg.ClientDirectory {
	case "postgres":
		conn, err := openPostgres()
		if err != nil {
			return nil, err
		}
		return postgres.NewClientRepository(conn), nil
	case "mongo":
		repo, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDBName, cfg.MongoCollection)
		if err != nil {
			return nil, fmt.Errorf("init client directory: %w", err)
		}
		app.closers = append(app.closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = repo.Close(closeCtx)
		})
		return repo, nil
	default:
		return nil, nil
	}
}
