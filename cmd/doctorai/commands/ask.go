package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caresense/doctorai/internal/chat"
	"github.com/caresense/doctorai/internal/embedder"
	"github.com/caresense/doctorai/internal/logging"
	"github.com/caresense/doctorai/internal/provider"
	"github.com/caresense/doctorai/internal/rag"
)

// NewAskCmd constructs the `doctorai ask` command, which runs a single
// one-shot question against the ingested corpus and prints the reply.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask Doctor AI a single medical question",
		Long: `Ask Doctor AI a one-shot question from the command line.

The question is answered against the ingested medical corpus with an empty
conversation history; nothing is persisted.

Examples:
  doctorai ask "what are the early symptoms of type 2 diabetes?"
  doctorai ask "is ibuprofen safe to combine with lisinopril?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ask: failed to initialise embedder: %w", err)
			}

			store := buildVectorStore(ctx, log)
			defer store.Close()

			retriever, err := rag.NewRetriever(emb, store, getEnvInt("RETRIEVAL_TOP_K", 3))
			if err != nil {
				return fmt.Errorf("ask: failed to create retriever: %w", err)
			}

			engine, err := chat.NewEngine(retriever, chatModel, nil, engineConfigFromEnv())
			if err != nil {
				return fmt.Errorf("ask: failed to create engine: %w", err)
			}

			reply, _, err := engine.Chat(ctx, "", args[0])
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	return cmd
}
