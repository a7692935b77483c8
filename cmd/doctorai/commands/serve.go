package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/caresense/doctorai/internal/chat"
	"github.com/caresense/doctorai/internal/embedder"
	"github.com/caresense/doctorai/internal/logging"
	"github.com/caresense/doctorai/internal/provider"
	"github.com/caresense/doctorai/internal/rag"
	"github.com/caresense/doctorai/internal/server"
	"github.com/caresense/doctorai/internal/tracing"
	"github.com/caresense/doctorai/internal/transcript"
)

// NewServeCmd constructs the `doctorai serve` command, which starts the HTTP
// server and serves the web UI for interactive use.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Doctor AI HTTP server and web UI",
		Long: `Start the Doctor AI HTTP server on localhost.

The server exposes a REST API and serves the chat web UI. Each conversation
turn retrieves relevant passages from the ingested medical corpus (or an
uploaded PDF), assembles the prompt with the conversation history, and
generates a reply with the configured LLM provider.

Examples:
  doctorai serve
  doctorai serve --port 9090
  MODEL_PROVIDER=ollama doctorai serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", getEnvOrDefault("MODEL_PROVIDER", "groq")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}
			log.Info("provider initialised")

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("serve: failed to initialise embedder: %w", err)
			}

			store := buildVectorStore(ctx, log)
			defer store.Close()

			retriever, err := rag.NewRetriever(emb, store, getEnvInt("RETRIEVAL_TOP_K", 3))
			if err != nil {
				return fmt.Errorf("serve: failed to create retriever: %w", err)
			}

			// Open the transcript store. DOCTORAI_TRANSCRIPT_DB overrides the
			// default path (~/.doctorai/transcripts.db). Set to "disabled" to
			// keep conversations in memory only.
			var transcripts chat.TranscriptWriter
			dbPath := os.Getenv("DOCTORAI_TRANSCRIPT_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = transcript.DefaultDBPath()
					if err != nil {
						return fmt.Errorf("serve: %w", err)
					}
				}
				ts, err := transcript.Open(dbPath)
				if err != nil {
					return fmt.Errorf("serve: failed to open transcript store at %s: %w", dbPath, err)
				}
				transcripts = ts
				defer func() { _ = ts.Close() }()
				log.Info("transcript store opened", slog.String("path", dbPath))
			} else {
				log.Info("transcript store disabled via DOCTORAI_TRANSCRIPT_DB=disabled")
			}

			engine, err := chat.NewEngine(retriever, chatModel, transcripts, engineConfigFromEnv())
			if err != nil {
				return fmt.Errorf("serve: failed to create engine: %w", err)
			}

			var pingers []server.Pinger
			if qs, ok := store.(*rag.QdrantStore); ok {
				pingers = append(pingers, server.NewQdrantPinger(qs.Client()))
			}
			pingers = append(pingers, server.NewEmbedderPinger(emb))

			srv, err := server.New(engine, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("DOCTORAI_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
