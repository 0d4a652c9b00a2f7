package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"

	"github.com/assessor-ai/assessor/agent/agents"
	contractx "github.com/assessor-ai/assessor/agent/contract"
	enginex "github.com/assessor-ai/assessor/agent/engine"
	ledgerx "github.com/assessor-ai/assessor/agent/ledger"
	llmx "github.com/assessor-ai/assessor/agent/llm"
	retrievalx "github.com/assessor-ai/assessor/agent/retrieval"
	sessionx "github.com/assessor-ai/assessor/agent/session"
	toolx "github.com/assessor-ai/assessor/agent/tool"
	configx "github.com/assessor-ai/assessor/pkg/config"
	logx "github.com/assessor-ai/assessor/pkg/logger"
	openrouterx "github.com/assessor-ai/assessor/pkg/openrouter"
	postgresx "github.com/assessor-ai/assessor/pkg/postgres"
)

// Conversation enders recognized by the read loop.
var exitWords = map[string]bool{
	"sair":  true,
	"end":   true,
	"fim":   true,
	"tchau": true,
	"bye":   true,
}

type AppConfig struct {
	SessionID   string `envconfig:"SESSION_ID" split_words:"true"`
	FAQDocument string `envconfig:"FAQ_DOCUMENT" split_words:"true" default:"faq.txt"`
}

func main() {
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()
	if err := configx.LoadEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, "load env file:", err)
		os.Exit(1)
	}

	logx.Init(*configx.MustNew[logx.Config]("LOG"))
	appCfg := configx.MustNew[AppConfig]("ASSESSOR")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	engineCfg := configx.MustNew[enginex.Config]("ENGINE")

	ctx := context.Background()

	gateway := buildGateway(ctx)
	retriever := buildRetriever(ctx, *llmCfg, appCfg.FAQDocument)
	store := buildSessionStore()

	registry, err := agents.NewRegistry(ctx, *llmCfg, gateway, retriever)
	if err != nil {
		log.Fatal().Err(err).Msg("build stage registry")
	}

	engine, err := enginex.New(ctx, store, registry, *engineCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build turn engine")
	}

	sessionID := strings.TrimSpace(appCfg.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	runREPL(ctx, engine, sessionID)
}

// buildGateway wires the financial tools when a ledger database is
// configured; without one the specialists simply plan no tool calls' results.
func buildGateway(ctx context.Context) contractx.ToolGateway {
	pgCfg, err := configx.New[postgresx.Config]("POSTGRES")
	if err != nil {
		log.Warn().Err(err).Msg("postgres not configured, financial tools disabled")
		return toolx.NewGateway(nil)
	}

	db, err := postgresx.New(*pgCfg)
	if err != nil {
		log.Warn().Err(err).Msg("postgres unavailable, financial tools disabled")
		return toolx.NewGateway(nil)
	}
	if err := postgresx.Ping(ctx, db); err != nil {
		log.Warn().Err(err).Msg("postgres unreachable, financial tools disabled")
		return toolx.NewGateway(nil)
	}

	return toolx.NewGateway(ledgerx.New(db))
}

// buildRetriever indexes the FAQ document. A missing document leaves the
// index empty; the FAQ stage then answers that the information is not in the
// FAQ.
func buildRetriever(ctx context.Context, llmCfg llmx.Config, path string) contractx.Retriever {
	client := openrouterx.NewClient(llmCfg.OpenRouterFor(contractx.StageFAQ))
	if client == nil {
		log.Fatal().Msg("openrouter client is required for the faq index")
	}

	embedder, err := retrievalx.NewOpenAIEmbedder(client, llmCfg.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("build embedder")
	}
	index, err := retrievalx.NewIndex(embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("build faq index")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("faq document not loaded, index stays empty")
		return index
	}
	if err := index.LoadDocument(ctx, string(raw)); err != nil {
		log.Fatal().Err(err).Msg("index faq document")
	}
	log.Info().Int("chunks", index.Len()).Str("path", path).Msg("faq document indexed")
	return index
}

func buildSessionStore() sessionx.Store {
	redisCfg, err := configx.New[sessionx.UpstashRedisConfig]("UPSTASH_REDIS")
	if err != nil {
		log.Info().Msg("upstash redis not configured, using in-memory sessions")
		return sessionx.NewMemoryStore()
	}
	store, err := sessionx.NewUpstashRedisStore(*redisCfg)
	if err != nil {
		log.Warn().Err(err).Msg("upstash redis invalid, using in-memory sessions")
		return sessionx.NewMemoryStore()
	}
	return store
}

func runREPL(ctx context.Context, engine *enginex.Engine, sessionID string) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("Assessor.AI — finanças e agenda. Digite 'sair' para encerrar.")

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("Encerrando a conversa.")
				return
			}
			log.Error().Err(err).Msg("read input")
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if exitWords[strings.ToLower(input)] {
			fmt.Println("Encerrando a conversa.")
			return
		}
		line.AppendHistory(input)

		reply, err := engine.RunTurn(ctx, sessionID, input)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("turn failed")
			fmt.Println(enginex.Translate(err))
			continue
		}
		fmt.Println(reply)
	}
}
