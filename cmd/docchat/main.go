package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/llmservice"
	"docchat/internal/prompt"
	"docchat/internal/rag"
	"docchat/internal/session"
	"docchat/internal/web"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a document file to ground the answer in")
	query := flag.String("query", "", "Query to be answered once, then exit")
	addr := flag.String("addr", "", "Listen address for the web UI (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	if *filePath != "" && *query == "" {
		log.Fatal().Msg("The -file flag requires a -query to answer")
	}

	pipeline := buildPipeline(cfg)

	if *query != "" {
		askOnce(context.Background(), pipeline, *filePath, *query)
		return
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	server := web.NewServer(pipeline)
	if err := server.Start(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func buildPipeline(cfg *config.Config) *rag.RAG {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	profile := ""
	if cfg.Persona.ProfilePath != "" {
		data, err := os.ReadFile(cfg.Persona.ProfilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error reading persona profile")
		}
		profile = string(data)
	}

	return rag.NewRAG(
		session.New(),
		chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		embedding.ChromemFunc(embedder),
		prompt.NewComposer(profile),
		llmservice.NewClient(&cfg.LLM),
		cfg.RAG.TopK,
	)
}

func askOnce(ctx context.Context, pipeline *rag.RAG, filePath, query string) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error reading document")
		}
		chunks, err := pipeline.ProcessDocument(ctx, filePath, data)
		if err != nil {
			log.Fatal().Err(err).Msg("Error processing document")
		}
		log.Info().Int("chunks", chunks).Msg("Document processed")
	}

	answer, err := pipeline.Ask(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer)
}
